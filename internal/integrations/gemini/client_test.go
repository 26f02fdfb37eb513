package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	"casatorpe/internal/domain"
)

type recordedCall struct {
	modelName string
	model     *genai.GenerativeModel
	parts     []genai.Part
	deadline  bool
}

func newTestClient(rec *recordedCall, resp *genai.GenerateContentResponse, err error) *Client {
	return &Client{
		model: "gemini-2.5-flash",
		newModel: func(name string) *genai.GenerativeModel {
			rec.modelName = name
			return &genai.GenerativeModel{}
		},
		generate: func(ctx context.Context, model *genai.GenerativeModel, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			rec.model = model
			rec.parts = parts
			_, rec.deadline = ctx.Deadline()
			return resp, err
		},
	}
}

func TestGenerate_ConfiguresModelAndReturnsText(t *testing.T) {
	rec := &recordedCall{}
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Benvenuti!")}},
	}}}
	c := newTestClient(rec, resp, nil)

	got, err := c.Generate(context.Background(), domain.GenerateRequest{
		SystemInstruction: "Sei Laura.",
		Prompt:            "MESSAGGIO UTENTE: Ciao",
		Temperature:       0.7,
	})
	require.NoError(t, err)
	require.Equal(t, "Benvenuti!", got)

	require.Equal(t, "gemini-2.5-flash", rec.modelName)
	require.NotNil(t, rec.model.Temperature)
	require.Equal(t, float32(0.7), *rec.model.Temperature)
	require.NotNil(t, rec.model.SystemInstruction)
	require.Equal(t, []genai.Part{genai.Text("Sei Laura.")}, rec.model.SystemInstruction.Parts)
	require.Equal(t, []genai.Part{genai.Text("MESSAGGIO UTENTE: Ciao")}, rec.parts)
	require.True(t, rec.deadline)
}

func TestGenerate_NoSystemInstruction(t *testing.T) {
	rec := &recordedCall{}
	c := newTestClient(rec, &genai.GenerateContentResponse{}, nil)

	got, err := c.Generate(context.Background(), domain.GenerateRequest{Prompt: "Ciao"})
	require.NoError(t, err)
	require.Empty(t, got)
	require.Nil(t, rec.model.SystemInstruction)
}

func TestGenerate_WrapsError(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := newTestClient(&recordedCall{}, nil, boom)

	_, err := c.Generate(context.Background(), domain.GenerateRequest{Prompt: "Ciao"})
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "gemini: generate content")
}

func TestClose_WithoutClient(t *testing.T) {
	require.NoError(t, (&Client{}).Close())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), "", "gemini-2.5-flash")
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")

	_, err = New(context.Background(), "key", " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{name: "nil response", resp: nil, want: ""},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, want: ""},
		{
			name: "candidate without content",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			want: "",
		},
		{
			name: "text parts are joined",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{
					genai.Text("Ciao! "),
					genai.Blob{MIMEType: "image/png"},
					genai.Text("La spiaggia di Posada è a 5 minuti."),
				}},
			}}},
			want: "Ciao! La spiaggia di Posada è a 5 minuti.",
		},
		{
			name: "only first candidate",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("primo")}}},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("secondo")}}},
			}},
			want: "primo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, extractText(tt.resp))
		})
	}
}
