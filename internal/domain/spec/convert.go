package spec

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	apperrors "github.com/alexisbeaulieu97/specdriver/pkg/errors"
)

// compareCell converts the raw expected value to the semantic type of the
// computed actual value and compares under that type's equality rule. A value
// that cannot be converted yields a ConversionError, which the caller reports
// as an exception rather than a wrong answer.
func compareCell(cellName, raw string, actual any) (bool, string, error) {
	actualText := formatActual(actual)

	ty, err := gocty.ImpliedType(actual)
	if err != nil {
		// No cty mapping for the actual's Go type; fall back to textual
		// comparison so fixtures may return arbitrary fmt.Stringer values.
		return raw == actualText, actualText, nil
	}

	actualVal, err := gocty.ToCtyValue(actual, ty)
	if err != nil {
		return false, actualText, apperrors.NewConversionError(cellName, actualText, ty.FriendlyName(), err)
	}

	expectedVal, err := convert.Convert(cty.StringVal(raw), ty)
	if err != nil {
		return false, actualText, apperrors.NewConversionError(cellName, raw, ty.FriendlyName(), err)
	}

	return actualVal.Equals(expectedVal).True(), actualText, nil
}

func formatActual(actual any) string {
	switch v := actual.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
