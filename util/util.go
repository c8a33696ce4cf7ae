package util

import (
	"encoding/gob"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

var MidiExtensions = []string{".mid", ".midi"}

var XMLExtensions = []string{".xml", ".musicxml"}

// GatherPaths walks root and collects files with one of the extensions.
// maxNum of 0 means no limit.
func GatherPaths(root string, extensions []string, maxNum int) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(s))
		for _, e := range extensions {
			if ext == e && (maxNum == 0 || len(res) < maxNum) {
				res = append(res, s)
			}
		}
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	return res, nil
}

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func WriteBinary(filename string, data any) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "couldn't open file %s", filename)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		return errors.Wrapf(err, "encoding %s", filename)
	}
	return nil
}

func ReadBinary[A any](path string) (A, error) {
	var data A
	f, err := os.Open(path)
	if err != nil {
		return data, errors.Wrapf(err, "couldn't read file %s", path)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return data, errors.Wrapf(err, "could not decode binary file %s", path)
	}
	return data, nil
}

func Sum[A constraints.Integer](nums []A) uint64 {
	var total uint64
	for _, v := range nums {
		total += uint64(v)
	}
	return total
}
