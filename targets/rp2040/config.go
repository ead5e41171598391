//go:build rp2040

package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"

	"tempnode/node"
)

var errKeyLength = errors.New("lorawan key has wrong length")

type firmwareConfig struct {
	Node node.Config

	devEUI [8]byte
	appEUI [8]byte
	appKey [16]byte
}

type rawFirmwareConfig struct {
	Node    json.RawMessage `json:"node"`
	LoRaWAN struct {
		DevEUI string `json:"dev_eui"`
		AppEUI string `json:"app_eui"`
		AppKey string `json:"app_key"`
	} `json:"lorawan"`
}

func loadFirmwareConfig(data []byte) (*firmwareConfig, error) {
	var raw rawFirmwareConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.Node) == 0 {
		raw.Node = json.RawMessage("{}")
	}
	nc, err := node.LoadConfig(raw.Node)
	if err != nil {
		return nil, err
	}

	fw := &firmwareConfig{Node: *nc}
	if err := decodeKey(fw.devEUI[:], raw.LoRaWAN.DevEUI); err != nil {
		return nil, err
	}
	if err := decodeKey(fw.appEUI[:], raw.LoRaWAN.AppEUI); err != nil {
		return nil, err
	}
	if err := decodeKey(fw.appKey[:], raw.LoRaWAN.AppKey); err != nil {
		return nil, err
	}
	return fw, nil
}

func decodeKey(dst []byte, s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return errKeyLength
	}
	copy(dst, b)
	return nil
}
