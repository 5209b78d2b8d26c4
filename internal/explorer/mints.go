package explorer

import (
	"encoding/base64"
	"encoding/json"
)

// MsgExecuteContractCompat is the message type of a contract execution on the
// wasmx module.
const MsgExecuteContractCompat = "/injective.wasmx.v1.MsgExecuteContractCompat"

// MintRecord is one contract-execution message identified as a mint.
type MintRecord struct {
	// MetadataURI is the content-addressed pointer to the token metadata.
	MetadataURI string
	// TxHash is the hash of the transaction the mint was found in.
	TxHash string
}

type message struct {
	Type  string `json:"type"`
	Value struct {
		Contract string          `json:"contract"`
		Msg      json.RawMessage `json:"msg"`
	} `json:"value"`
}

type executeMsg struct {
	Mint *struct {
		MetadataURI string `json:"metadata_uri"`
	} `json:"mint"`
}

// ExtractMints scans every transaction message in every page and returns the
// mints targeting the given contract, plus the number of transactions whose
// message payload could not be decoded. Messages without a mint key are not
// errors; most contract transactions are not mints.
func ExtractMints(pages []*Page, contract string) ([]*MintRecord, int) {
	var mints []*MintRecord
	rejected := 0

	for _, page := range pages {
		for _, tx := range page.Data {
			messages, err := decodeMessages(tx.Messages)
			if err != nil {
				rejected++
				continue
			}

			for _, msg := range messages {
				if msg.Type != MsgExecuteContractCompat || msg.Value.Contract != contract {
					continue
				}

				var exec executeMsg
				if err := unmarshalRelaxed(msg.Value.Msg, &exec); err != nil {
					rejected++
					continue
				}
				if exec.Mint == nil || exec.Mint.MetadataURI == "" {
					continue
				}

				mints = append(mints, &MintRecord{
					MetadataURI: exec.Mint.MetadataURI,
					TxHash:      tx.Hash,
				})
			}
		}
	}

	return mints, rejected
}

// decodeMessages decodes the messages payload of a transaction. The explorer
// returns either a structured JSON array or that same array serialized as a
// base64 (or plain JSON) string.
func decodeMessages(raw json.RawMessage) ([]message, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var messages []message
	if err := json.Unmarshal(raw, &messages); err == nil {
		return messages, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Not base64: the string itself carries the JSON.
		decoded = []byte(encoded)
	}

	if err := json.Unmarshal(decoded, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// unmarshalRelaxed decodes a value that may arrive either as a JSON object or
// as a JSON string holding the object.
func unmarshalRelaxed(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return err
	}
	return json.Unmarshal([]byte(encoded), v)
}
