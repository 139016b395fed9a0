package llm

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/telemetry"
)

// Generate executes req for a pipeline stage and decodes the structured
// output into target. It traces the call, records generation metrics and
// reports every failure as a coded generation error.
func Generate(ctx context.Context, client Client, stage string, req *Request, target interface{}) (*Response, error) {
	ctx, span := telemetry.StartSpan(ctx, "generate."+stage,
		trace.WithAttributes(
			telemetry.AttrStage.String(stage),
			telemetry.AttrModel.String(req.Model),
		),
	)
	defer span.End()

	if req.GetMetadata(MetaStage) == "" {
		req.WithMetadata(MetaStage, stage)
	}

	start := time.Now()
	resp, err := client.Execute(ctx, req)
	if err == nil && target != nil {
		err = resp.Decode(target)
	}
	telemetry.GetMetrics().RecordGeneration(ctx, stage, err == nil, time.Since(start).Seconds())

	if err != nil {
		telemetry.SetSpanError(span, err)
		return resp, apperrors.Wrap(apperrors.ErrCodeGeneration, fmt.Sprintf("%s generation failed", stage), err)
	}

	telemetry.SetSpanOK(span)
	return resp, nil
}
