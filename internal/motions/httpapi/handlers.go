package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/debate-motions/internal/motions/domain"
	"github.com/yungbote/debate-motions/internal/motions/generator"
)

// GenerateMotionsRequest is the body of POST /api/motions. The body itself
// and the topic are both optional.
type GenerateMotionsRequest struct {
	Topic *string `json:"topic"`
}

type readyResponse struct {
	Status              string `json:"status"`
	InferenceConfigured bool   `json:"inference_configured"`
}

func handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func handleReadyz(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil && !ready() {
			c.JSON(http.StatusServiceUnavailable, readyResponse{Status: "not_ready"})
			return
		}
		c.JSON(http.StatusOK, readyResponse{Status: "ok", InferenceConfigured: true})
	}
}

func handleGenerateMotions(maxBytes int64, gen *generator.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in GenerateMotionsRequest
		if err := decodeOptionalJSON(c, maxBytes, &in); err != nil {
			c.JSON(http.StatusBadRequest, domain.Fail[domain.MotionSet](domain.KindInputInvalid, domain.MsgInputInvalid))
			return
		}

		req := domain.MotionRequest{}
		if in.Topic != nil {
			req.Topic = *in.Topic
		}

		res := gen.Generate(c.Request.Context(), req)
		status := http.StatusOK
		if !res.IsOK() {
			status = res.Code.HTTPStatus()
		}
		c.JSON(status, res)
	}
}

// decodeOptionalJSON treats an empty body as an empty object.
func decodeOptionalJSON(c *gin.Context, maxBytes int64, dst any) error {
	body := c.Request.Body
	if body == nil {
		return nil
	}
	if maxBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, maxBytes)
	}
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
