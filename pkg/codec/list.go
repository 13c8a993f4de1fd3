package codec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jingkaihe/p4gate/internal/errx"
)

// KV is the key/value boundary string lists are stored through.
type KV interface {
	Keys() ([]string, error)
	Get(key string) (string, bool, error)
	Put(key, value string) error
	Remove(key string) error
}

type indexed struct {
	index int
	value string
}

// GetStringList collects every "<key>.<n>" entry and returns the values
// ordered by n. Gaps in the numbering are closed up. A suffix that is not a
// non-negative integer fails the whole list.
func GetStringList(kv KV, key string) ([]string, error) {
	keys, err := kv.Keys()
	if err != nil {
		return nil, errx.Wrap(ErrListKeys, err)
	}

	prefix := key + "."
	var items []indexed
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		suffix := k[strings.LastIndexByte(k, '.')+1:]
		idx, err := strconv.Atoi(suffix)
		if err != nil || idx < 0 {
			return nil, errx.With(ErrListIndex, ": %q", k)
		}
		v, ok, err := kv.Get(k)
		if err != nil {
			return nil, errx.Wrap(ErrListKeys, err)
		}
		if !ok {
			continue
		}
		items = append(items, indexed{index: idx, value: v})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].index < items[j].index })
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.value
	}
	return out, nil
}

// PutStringList removes every "<key>.*" entry and writes values as
// "<key>.0" through "<key>.<len-1>".
func PutStringList(kv KV, key string, values []string) error {
	keys, err := kv.Keys()
	if err != nil {
		return errx.Wrap(ErrListKeys, err)
	}
	prefix := key + "."
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			if err := kv.Remove(k); err != nil {
				return errx.Wrap(ErrListWrite, err)
			}
		}
	}
	for i, v := range values {
		if err := kv.Put(prefix+strconv.Itoa(i), v); err != nil {
			return errx.Wrap(ErrListWrite, err)
		}
	}
	return nil
}
