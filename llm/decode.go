package llm

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode copies a structured result into out, matching fields by their
// json tags. It fails if res is a text result.
func Decode(res Result, out any) error {
	if !res.IsStructured() {
		return fmt.Errorf("llm: decode: result is %s, not structured", res.Kind)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "json",
	})
	if err != nil {
		return fmt.Errorf("llm: decode: %w", err)
	}
	if err := dec.Decode(res.Value); err != nil {
		return fmt.Errorf("llm: decode: %w", err)
	}
	return nil
}
