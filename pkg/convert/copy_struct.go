package convert

import (
	"time"

	"github.com/haierkeys/site-text-service/pkg/timex"

	"github.com/jinzhu/copier"
)

// time.Time and timex.Time are copied into each other, and a zero time becomes a nil *timex.Time
var copyOption = copier.Option{
	IgnoreEmpty: false,
	DeepCopy:    true,
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: timex.Time{},
			Fn: func(src interface{}) (interface{}, error) {
				return timex.Time(src.(time.Time).UTC()), nil
			},
		},
		{
			SrcType: timex.Time{},
			DstType: time.Time{},
			Fn: func(src interface{}) (interface{}, error) {
				return time.Time(src.(timex.Time)), nil
			},
		},
	},
}

// StructAssign copies same-named fields of src into dst and returns dst
// StructAssign 把 src 与 dst 同名字段的值复制到 dst 中
func StructAssign(src any, dst any) any {
	if err := copier.CopyWithOption(dst, src, copyOption); err != nil {
		return dst
	}
	return dst
}
