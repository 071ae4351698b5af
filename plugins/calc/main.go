// The calc plugin evaluates arithmetic expressions through a restricted
// grammar evaluator. Only numeric literals, + - * /, and parentheses are
// accepted; there is no identifier or call syntax to abuse.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/mattjoyce/sprocket/internal/expr"
	"github.com/mattjoyce/sprocket/internal/log"
	"github.com/mattjoyce/sprocket/internal/protocol"
	"github.com/mattjoyce/sprocket/internal/sdk"
)

const defaultPrecision = 2

func main() {
	log.Setup(os.Getenv("SPROCKET_LOG_LEVEL"))
	newPlugin().Main()
}

func newPlugin() *sdk.Plugin {
	p := sdk.New(protocol.Metadata{
		Name:        "calc",
		Version:     "1.0.0",
		Description: "Arithmetic expression evaluation",
		Author:      "Sprocket Team",
		Tags:        []string{"math", "calculation", "utility"},
	})

	p.Register("calculate", protocol.ActionSpec{
		Description: "Perform mathematical calculations",
		Inputs: map[string]protocol.ParamSpec{
			"expression": {Type: protocol.TypeString, Required: true, Description: "Mathematical expression to evaluate"},
			"precision":  {Type: protocol.TypeNumber, Default: defaultPrecision, Description: "Decimal precision"},
		},
		Outputs: map[string]protocol.ParamSpec{
			"result":     {Type: protocol.TypeNumber, Description: "Calculation result"},
			"expression": {Type: protocol.TypeString, Description: "Original expression"},
		},
	}, handleCalculate)

	return p
}

func handleCalculate(params sdk.Params) (protocol.Result, error) {
	expression, err := params.String("expression")
	if err != nil {
		return nil, err
	}
	precision := params.IntDefault("precision", defaultPrecision)

	value, err := expr.Eval(expression)
	if err != nil {
		return nil, fmt.Errorf("Invalid expression: %v", err)
	}

	return protocol.Result{
		"result":     roundTo(value, precision),
		"expression": expression,
	}, nil
}

func roundTo(v float64, precision int) float64 {
	pow := math.Pow(10, float64(precision))
	return math.Round(v*pow) / pow
}
