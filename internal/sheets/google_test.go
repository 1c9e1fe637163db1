package sheets

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
)

func newLimitedStore(t *testing.T) *GoogleStore {
	t.Helper()
	prev := initialBackoff
	initialBackoff = time.Millisecond
	t.Cleanup(func() { initialBackoff = prev })
	return &GoogleStore{limiter: rate.NewLimiter(rate.Inf, 1), sheetIDs: map[string]int64{}}
}

func apiError(code int) error {
	return &googleapi.Error{Code: code, Message: http.StatusText(code)}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"cuota", apiError(http.StatusTooManyRequests), true},
		{"interno", apiError(http.StatusInternalServerError), true},
		{"no disponible envuelto", errors.Join(errors.New("ctx"), apiError(http.StatusServiceUnavailable)), true},
		{"permiso", apiError(http.StatusForbidden), false},
		{"no encontrado", apiError(http.StatusNotFound), false},
		{"otro error", errors.New("sin red"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

func TestCallRetries(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   int
	}{
		{"ok al primer intento", []error{nil}, 1, 0},
		{"429 y luego ok", []error{apiError(429), nil}, 2, 0},
		{"4xx no se reintenta", []error{apiError(400), nil}, 1, 400},
		{"corta en maxAttempts", []error{apiError(503), apiError(503), apiError(503), nil}, maxAttempts, 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLimitedStore(t)
			calls := 0
			err := s.call(context.Background(), "test", func() error {
				err := tt.errs[calls]
				calls++
				return err
			})
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == 0 {
				require.NoError(t, err)
				return
			}
			var gerr *googleapi.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.wantErr, gerr.Code)
		})
	}
}

func TestCallHonorsContext(t *testing.T) {
	s := newLimitedStore(t)
	initialBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := s.call(ctx, "test", func() error {
		calls++
		cancel()
		return apiError(http.StatusTooManyRequests)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)

	// con el contexto ya cancelado no se llama a la API
	err = s.call(ctx, "test", func() error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestFormatRequest(t *testing.T) {
	merge := formatRequest(7, FormatOp{Kind: OpMerge, FromRow: 2, ToRow: 4, Col: 7})
	require.NotNil(t, merge.MergeCells)
	assert.Equal(t, "MERGE_ALL", merge.MergeCells.MergeType)
	gr := merge.MergeCells.Range
	assert.Equal(t, int64(7), gr.SheetId)
	assert.Equal(t, int64(1), gr.StartRowIndex)
	assert.Equal(t, int64(4), gr.EndRowIndex)
	assert.Equal(t, int64(6), gr.StartColumnIndex)
	assert.Equal(t, int64(7), gr.EndColumnIndex)

	plain := formatRequest(7, FormatOp{Kind: OpStyle, FromRow: 2, ToRow: 2, Col: 6,
		Style: CellStyle{Bold: true, FontColor: "#0D47A1"}})
	require.NotNil(t, plain.RepeatCell)
	assert.Equal(t, "userEnteredFormat(textFormat)", plain.RepeatCell.Fields)
	assert.Nil(t, plain.RepeatCell.Cell.UserEnteredFormat.BackgroundColor)
	assert.True(t, plain.RepeatCell.Cell.UserEnteredFormat.TextFormat.Bold)

	filled := formatRequest(7, FormatOp{Kind: OpStyle, FromRow: 2, ToRow: 3, Col: 7, Style: CellStyle{Bold: true, FontColor: "#0D47A1", Background: "#FFF59D", FontSize: 12}})
	assert.Equal(t, "userEnteredFormat(textFormat,backgroundColor)", filled.RepeatCell.Fields)
	require.NotNil(t, filled.RepeatCell.Cell.UserEnteredFormat.BackgroundColor)
	assert.Equal(t, int64(12), filled.RepeatCell.Cell.UserEnteredFormat.TextFormat.FontSize)
}

func TestHexColor(t *testing.T) {
	c := hexColor("#FF8000")
	require.NotNil(t, c)
	assert.Equal(t, 1.0, c.Red)
	assert.InDelta(t, 128.0/255, c.Green, 1e-9)
	assert.Equal(t, 0.0, c.Blue)

	assert.NotNil(t, hexColor("0d47a1"))
	assert.Nil(t, hexColor(""))
	assert.Nil(t, hexColor("#FFF"))
	assert.Nil(t, hexColor("#GGGGGG"))
}
