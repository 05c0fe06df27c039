package generator

import (
	"context"
	"errors"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/debate-motions/internal/motions/domain"
	"github.com/yungbote/debate-motions/internal/motions/engine"
	"github.com/yungbote/debate-motions/internal/motions/parse"
	"github.com/yungbote/debate-motions/internal/motions/prompt"
	"github.com/yungbote/debate-motions/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/debate-motions/internal/motions/generator")

type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator runs the motion pipeline. It holds no per-request state and is
// safe for concurrent use.
type Generator struct {
	engine   engine.Engine
	opts     Options
	log      *logger.Logger
	validate *validator.Validate
}

func New(eng engine.Engine, opts Options, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.NewNop()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("topic", validTopic)
	return &Generator{
		engine:   eng,
		opts:     opts,
		log:      log.With("component", "motions.generator"),
		validate: v,
	}
}

// Generate builds the prompt, calls the engine once, then parses and
// validates the reply. It never panics and never returns a partial result.
func (g *Generator) Generate(ctx context.Context, req domain.MotionRequest) (res domain.Result[domain.MotionSet]) {
	start := time.Now()
	topic := req.Normalize()

	ctx, span := tracer.Start(ctx, "motions.generate")
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			err := recoveredError(rec)
			kind, msg := Classify(err)
			g.log.Error("motion generation panicked", "panic", rec, "kind", kind)
			res = domain.Fail[domain.MotionSet](kind, msg)
		}
		span.SetAttributes(
			attribute.Bool("motions.topic_present", topic != ""),
			attribute.String("motions.result", string(res.Kind)),
		)
		if !res.IsOK() {
			span.SetAttributes(attribute.String("motions.kind", string(res.Code)))
			span.SetStatus(codes.Error, res.Message)
		}
	}()

	set, err := g.run(ctx, domain.MotionRequest{Topic: topic})
	if err != nil {
		kind, msg := Classify(err)
		g.log.Warn("motion generation failed",
			"kind", kind,
			"topic_present", topic != "",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return domain.Fail[domain.MotionSet](kind, msg)
	}

	g.log.Info("motions generated",
		"motions", len(set.Motions),
		"topic_present", topic != "",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return domain.Ok(set)
}

func (g *Generator) run(ctx context.Context, req domain.MotionRequest) (domain.MotionSet, error) {
	if err := g.validate.Struct(req); err != nil {
		return domain.MotionSet{}, domain.NewError(domain.KindInputInvalid, "", err)
	}
	if g.engine == nil {
		return domain.MotionSet{}, domain.NewError(domain.KindUnexpected, "", errors.New("generator: engine not configured"))
	}

	p := prompt.Build(req.Topic)
	raw, err := g.engine.Complete(ctx, g.opts.Model, []engine.Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}, engine.GenerateOptions{
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		return domain.MotionSet{}, err
	}

	return parse.ParseMotions(raw)
}

func validTopic(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
