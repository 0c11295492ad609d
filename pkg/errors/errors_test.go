package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PopulatesCodeMessageStack(t *testing.T) {
	err := New(ErrCodeStoreQuery, "query failed")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeStoreQuery, err.Code)
	assert.Equal(t, "query failed", err.Message)
	assert.NotEmpty(t, err.Stack)
}

func TestError_FormatWithAndWithoutDetail(t *testing.T) {
	err := New(ErrCodeLLMMalformed, "bad payload")
	assert.Equal(t, "[LLM_002] bad payload", err.Error())

	withDetail := err.WithDetail("missing drugs_mentioned field")
	assert.Equal(t, "[LLM_002] bad payload: missing drugs_mentioned field", withDetail.Error())
	// Original is not mutated.
	assert.Empty(t, err.Detail)
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "should be nil"))
}

func TestWrap_PreservesCauseChain(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrCodeStoreUnavailable, "neo4j unreachable")
	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsCode_TraversesChain(t *testing.T) {
	inner := New(ErrCodeRateLimited, "quota exhausted")
	outer := Wrap(inner, ErrCodeGenerationFailed, "answer generation failed")

	assert.True(t, IsCode(outer, ErrCodeRateLimited))
	assert.True(t, IsCode(outer, ErrCodeGenerationFailed))
	assert.False(t, IsCode(outer, ErrCodeStoreQuery))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(New(ErrCodeRateLimited, "429")))
	assert.False(t, IsRateLimited(New(ErrCodeLLMUnavailable, "down")))
	assert.False(t, IsRateLimited(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeNotFound, GetCode(New(ErrCodeNotFound, "gone")))
	assert.Equal(t, ErrCodeInternal, GetCode(fmt.Errorf("plain error")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeBadRequest, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeRateLimited, 429},
		{ErrCodeStoreUnavailable, 503},
		{ErrCodeInternal, 500},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.code.HTTPStatus(), "code %s", tc.code)
	}
}
