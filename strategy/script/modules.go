package script

import (
	"fmt"

	objects "github.com/d5/tengo/v2"
	"github.com/thrasher-corp/gct-ta/indicators"
)

const errParameterConvertFailed = "failed to convert script parameter %v"

// indicatorModule is importable from scripts as "indicators". Each
// function takes a value array and a period and returns the indicator's
// latest value, or undefined while the window is still filling
var indicatorModule = map[string]objects.Object{
	"sma": &objects.UserFunction{Name: "sma", Value: sma},
	"ema": &objects.UserFunction{Name: "ema", Value: ema},
	"rsi": &objects.UserFunction{Name: "rsi", Value: rsi},
}

func seriesArgs(args []objects.Object) ([]float64, int, error) {
	if len(args) != 2 {
		return nil, 0, objects.ErrWrongNumArguments
	}
	arr, ok := objects.ToInterface(args[0]).([]interface{})
	if !ok {
		return nil, 0, fmt.Errorf(errParameterConvertFailed, args[0])
	}
	values := make([]float64, len(arr))
	for i := range arr {
		switch v := arr[i].(type) {
		case float64:
			values[i] = v
		case int64:
			values[i] = float64(v)
		default:
			return nil, 0, fmt.Errorf(errParameterConvertFailed, arr[i])
		}
	}
	period, ok := objects.ToInt(args[1])
	if !ok || period <= 0 {
		return nil, 0, fmt.Errorf(errParameterConvertFailed, args[1])
	}
	return values, period, nil
}

func sma(args ...objects.Object) (objects.Object, error) {
	values, period, err := seriesArgs(args)
	if err != nil {
		return nil, err
	}
	if len(values) < period {
		return objects.UndefinedValue, nil
	}
	out := indicators.SMA(values, period)
	if len(out) == 0 {
		return objects.UndefinedValue, nil
	}
	return &objects.Float{Value: out[len(out)-1]}, nil
}

func ema(args ...objects.Object) (objects.Object, error) {
	values, period, err := seriesArgs(args)
	if err != nil {
		return nil, err
	}
	if len(values) < period {
		return objects.UndefinedValue, nil
	}
	out := indicators.EMA(values, period)
	if len(out) == 0 {
		return objects.UndefinedValue, nil
	}
	return &objects.Float{Value: out[len(out)-1]}, nil
}

func rsi(args ...objects.Object) (objects.Object, error) {
	values, period, err := seriesArgs(args)
	if err != nil {
		return nil, err
	}
	if len(values) <= period {
		return objects.UndefinedValue, nil
	}
	out := indicators.RSI(values, period)
	if len(out) == 0 {
		return objects.UndefinedValue, nil
	}
	return &objects.Float{Value: out[len(out)-1]}, nil
}
