package grpcsync

import (
	"fmt"

	"github.com/dmitrijs2005/wlog/internal/codec"
	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/models"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func toStruct(e models.Entry) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":           structpb.NewStringValue(e.ID.String()),
		"message":      structpb.NewStringValue(e.Message),
		"time_created": structpb.NewStringValue(e.Created),
	}}
}

func toList(es []models.Entry) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(es))
	for _, e := range es {
		values = append(values, structpb.NewStructValue(toStruct(e)))
	}
	return &structpb.ListValue{Values: values}
}

// fromValue decodes one list element with the JSON codec rules. idOptional
// mirrors HTTP push, where entries may not have an id yet.
func fromValue(v *structpb.Value, idOptional bool) (models.Entry, error) {
	s := v.GetStructValue()
	if s == nil {
		return models.Entry{}, fmt.Errorf("%w: element is not an object", common.ErrMalformedEntry)
	}

	raw, err := protojson.Marshal(s)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %v", common.ErrMalformedEntry, err)
	}

	if idOptional {
		return codec.DecodePushed(raw)
	}
	return codec.DecodeEntry(string(raw))
}
