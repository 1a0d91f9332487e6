package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/IlikeChooros/go-settlement/pkg/settlement"
)

const snapshotVersion = 1

// First line of a snapshot file, readable without decoding the whole settlement
type Header struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Nodes   int    `json:"nodes"`
}

// Write the snapshot as zstd compressed JSON: a header line, then the settlement
func WriteSnapshot(path string, snap settlement.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(Header{Version: snapshotVersion, ID: snap.ID.String(), Nodes: len(snap.Nodes)})
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

func ReadSnapshot(path string) (Header, settlement.Snapshot, error) {
	var (
		header Header
		snap   settlement.Snapshot
	)
	f, err := os.Open(path)
	if err != nil {
		return header, snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return header, snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return header, snap, fmt.Errorf("snapshot header: %w", err)
	}
	if err := json.Unmarshal(line, &header); err != nil {
		return header, snap, fmt.Errorf("snapshot header: %w", err)
	}
	if header.Version != snapshotVersion {
		return header, snap, fmt.Errorf("snapshot version %d is not supported", header.Version)
	}

	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return header, snap, fmt.Errorf("json decode: %w", err)
	}
	return header, snap, nil
}
