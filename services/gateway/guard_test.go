package gateway

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidation(t *testing.T, err error, reason Reason, message string) {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, reason, verr.Reason)
	assert.Equal(t, message, verr.Message)
}

func TestNewGuard_DefaultsForNonPositiveLimits(t *testing.T) {
	g := NewGuard(Limits{SummarizeMaxChars: 500, ChatContextMaxChars: -1})

	assert.Equal(t, 20, g.Limits().SummarizeMinChars)
	assert.Equal(t, 500, g.Limits().SummarizeMaxChars)
	assert.Equal(t, 50, g.Limits().TranscribeMinChars)
	assert.Equal(t, 3000, g.Limits().ChatContextMaxChars)
}

func TestGuard_Summarize(t *testing.T) {
	g := NewGuard(DefaultLimits())

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty", input: "", wantErr: true},
		{name: "ten characters", input: "abcdefghij", wantErr: true},
		{name: "short after trimming", input: "     short text     \n\n\n", wantErr: true},
		{name: "exactly minimum", input: strings.Repeat("a", 20), want: strings.Repeat("a", 20)},
		{name: "padding kept", input: "  " + strings.Repeat("b", 30) + "\n", want: "  " + strings.Repeat("b", 30) + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Summarize(tt.input)
			if tt.wantErr {
				requireValidation(t, err, ReasonTooShort, MsgTextTooShort)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuard_Summarize_Truncates(t *testing.T) {
	g := NewGuard(DefaultLimits())

	got, err := g.Summarize(strings.Repeat("x", 15000))
	require.NoError(t, err)
	assert.Equal(t, 12000, utf8.RuneCountInString(got))

	exact := strings.Repeat("y", 12000)
	got, err = g.Summarize(exact)
	require.NoError(t, err)
	assert.Equal(t, exact, got)
}

func TestGuard_Summarize_TruncatesPaddedInput(t *testing.T) {
	g := NewGuard(DefaultLimits())
	padded := strings.Repeat(" ", 10) + strings.Repeat("a", 11995)

	got, err := g.Summarize(padded)
	require.NoError(t, err)
	assert.Equal(t, 12000, utf8.RuneCountInString(got))
	assert.Equal(t, padded[:12000], got)
}

func TestGuard_Summarize_CountsRunes(t *testing.T) {
	g := NewGuard(Limits{SummarizeMinChars: 5, SummarizeMaxChars: 6})

	got, err := g.Summarize("héllo wörld")
	require.NoError(t, err)
	assert.Equal(t, "héllo ", got)
	assert.True(t, utf8.ValidString(got))

	_, err = g.Summarize("ñññ")
	requireValidation(t, err, ReasonTooShort, MsgTextTooShort)
}

func TestGuard_Transcribe(t *testing.T) {
	g := NewGuard(DefaultLimits())

	t.Run("missing", func(t *testing.T) {
		_, _, err := g.Transcribe("")
		requireValidation(t, err, ReasonMissingInput, MsgNoTranscribeText)
	})

	t.Run("blank text short-circuits", func(t *testing.T) {
		in := strings.Repeat(" ", 30)
		got, short, err := g.Transcribe(in)
		require.NoError(t, err)
		assert.True(t, short)
		assert.Equal(t, in, got)
	})

	t.Run("short text short-circuits", func(t *testing.T) {
		in := strings.Repeat("s", 30)
		got, short, err := g.Transcribe(in)
		require.NoError(t, err)
		assert.True(t, short)
		assert.Equal(t, in, got)
	})

	t.Run("long text goes to providers", func(t *testing.T) {
		in := strings.Repeat("l", 50)
		got, short, err := g.Transcribe(in)
		require.NoError(t, err)
		assert.False(t, short)
		assert.Equal(t, in, got)
	})
}

func TestGuard_Chat(t *testing.T) {
	g := NewGuard(DefaultLimits())

	t.Run("missing message", func(t *testing.T) {
		_, _, err := g.Chat("  ", "context")
		requireValidation(t, err, ReasonMissingInput, MsgNoChatMessage)
	})

	t.Run("blank context uses placeholder", func(t *testing.T) {
		msg, ctx, err := g.Chat("What is X?", "  \n ")
		require.NoError(t, err)
		assert.Equal(t, "What is X?", msg)
		assert.Equal(t, NoContextPlaceholder, ctx)
	})

	t.Run("context truncated", func(t *testing.T) {
		_, ctx, err := g.Chat("q", strings.Repeat("c", 3500))
		require.NoError(t, err)
		assert.Equal(t, 3000, utf8.RuneCountInString(ctx))
	})
}

func TestGuard_Image(t *testing.T) {
	g := NewGuard(DefaultLimits())
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	t.Run("empty", func(t *testing.T) {
		_, err := g.Image(nil, "image/png")
		requireValidation(t, err, ReasonMissingInput, MsgNoImage)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := g.Image([]byte("%PDF-1.4"), "application/pdf")
		requireValidation(t, err, ReasonMissingInput, MsgNoImage)
	})

	t.Run("declared type kept", func(t *testing.T) {
		img, err := g.Image(png, "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.MIMEType)
	})

	t.Run("parameters stripped", func(t *testing.T) {
		img, err := g.Image(png, "image/png; charset=binary")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
	})

	t.Run("missing type is sniffed", func(t *testing.T) {
		img, err := g.Image(png, "")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, png, img.Data)
	})

	t.Run("octet-stream text is rejected", func(t *testing.T) {
		_, err := g.Image([]byte("plain text body"), "application/octet-stream")
		requireValidation(t, err, ReasonMissingInput, MsgNoImage)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "日本", Truncate("日本語", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))
}
