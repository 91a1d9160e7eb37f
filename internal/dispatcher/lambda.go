package dispatcher

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

type invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

type implLambda struct {
	api      invoker
	function string
}

// NewLambda creates a Dispatcher that invokes function with InvocationType Event.
func NewLambda(client *lambda.Client, function string) Dispatcher {
	return &implLambda{api: client, function: function}
}

func (d *implLambda) Dispatch(ctx context.Context, payload []byte) error {
	if d.function == "" {
		return fmt.Errorf("dispatch: target function is not configured")
	}

	out, err := d.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(d.function),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("dispatch: invoke %s: %w", d.function, err)
	}
	if out.FunctionError != nil {
		return fmt.Errorf("dispatch: invoke %s: %s", d.function, aws.ToString(out.FunctionError))
	}
	return nil
}
