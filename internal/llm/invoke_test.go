package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/verustcode/docsynth/pkg/errors"
)

// stubClient returns a fixed content or error
type stubClient struct {
	*BaseClient
	content string
	err     error
	last    *Request
}

func newStubClient(content string, err error) *stubClient {
	return &stubClient{BaseClient: NewBaseClient(NewClientConfig("stub")), content: content, err: err}
}

func (s *stubClient) Available() bool { return true }
func (s *stubClient) Close() error    { return nil }

func (s *stubClient) Execute(_ context.Context, req *Request) (*Response, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	prepared, err := s.PrepareRequest(req)
	if err != nil {
		return nil, err
	}
	return s.BuildResponse(s.content, prepared.Model, prepared.ResponseSchema), nil
}

type toolProfile struct {
	Name string `json:"name"`
}

func TestGenerate(t *testing.T) {
	schema := &ResponseSchema{Name: "tool", Schema: toolProfile{}}

	t.Run("decodes structured output", func(t *testing.T) {
		client := newStubClient(`{"name": "Ledgerly"}`, nil)

		var out toolProfile
		resp, err := Generate(context.Background(), client, "tool", NewRequest("p").WithSchema(schema), &out)
		require.NoError(t, err)
		assert.Equal(t, KindStructured, resp.Kind)
		assert.Equal(t, "Ledgerly", out.Name)
		assert.Equal(t, "tool", client.last.GetMetadata(MetaStage))
	})

	t.Run("text output is a generation error", func(t *testing.T) {
		client := newStubClient("sorry, I cannot help", nil)

		var out toolProfile
		_, err := Generate(context.Background(), client, "tool", NewRequest("p").WithSchema(schema), &out)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeGeneration))
		assert.ErrorIs(t, err, ErrNoStructuredOutput)
	})

	t.Run("client failure is a generation error", func(t *testing.T) {
		boom := errors.New("unavailable")
		client := newStubClient("", boom)

		_, err := Generate(context.Background(), client, "toc", NewRequest("p"), nil)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeGeneration))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("nil target skips decoding", func(t *testing.T) {
		client := newStubClient("plain text", nil)

		resp, err := Generate(context.Background(), client, "section", NewRequest("p"), nil)
		require.NoError(t, err)
		assert.Equal(t, KindText, resp.Kind)
	})
}
