package codec

import (
	"errors"
	"fmt"

	"github.com/jingkaihe/p4gate/pkg/api"
)

var (
	ErrConnectionFields = fmt.Errorf("%w: connection", api.ErrConfigDecode)
	ErrPreferenceLength = fmt.Errorf("%w: preferences", api.ErrConfigDecode)
	ErrListIndex        = fmt.Errorf("%w: string list index", api.ErrConfigDecode)
	ErrListKeys         = errors.New("list stored keys")
	ErrListWrite        = errors.New("write string list")
)
