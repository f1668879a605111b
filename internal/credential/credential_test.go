package credential

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/somoni69/shop-app/internal/logging"
)

var validTestKey = TestModePrefix + strings.Repeat("a", 90) + "wxyz"

func TestKey_NeverPrintsSecret(t *testing.T) {
	k := NewKey(validTestKey)

	assert.Equal(t, "wxyz", k.Suffix())
	assert.Equal(t, "...wxyz", k.String())
	assert.Equal(t, "...wxyz", fmt.Sprintf("%v", k))
	assert.Equal(t, "...wxyz", fmt.Sprintf("%s", k))
	assert.Equal(t, validTestKey, k.Reveal())
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want []error
	}{
		{name: "test mode key", key: validTestKey},
		{name: "live mode key", key: LiveModePrefix + strings.Repeat("b", 100)},
		{name: "publishable key", key: "pk_test_" + strings.Repeat("c", 100), want: []error{ErrUnknownPrefix}},
		{name: "truncated key", key: TestModePrefix + "short", want: []error{ErrTooShort}},
		{name: "garbage", key: "abc", want: []error{ErrUnknownPrefix, ErrTooShort}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(NewKey(tt.key)))
		})
	}
}

func TestReport_MissingKey(t *testing.T) {
	var buf bytes.Buffer
	Report(logging.New(&buf, "test"), Key{}, false)

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, "stripe secret key not found")
}

func TestReport_ValidKeyLogsOnlySuffix(t *testing.T) {
	var buf bytes.Buffer
	Report(logging.New(&buf, "test"), NewKey(validTestKey), true)

	out := buf.String()
	assert.Contains(t, out, "stripe secret key loaded")
	assert.Contains(t, out, `"key":"...wxyz"`)
	assert.NotContains(t, out, validTestKey)
	assert.NotContains(t, out, `"level":"WARN"`)
}

func TestReport_BadKeyOnlyWarns(t *testing.T) {
	var buf bytes.Buffer
	secret := "pk_live_123"

	assert.NotPanics(t, func() {
		Report(logging.New(&buf, "test"), NewKey(secret), true)
	})

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `"level":"WARN"`))
	assert.Contains(t, out, "publishable key")
	assert.Contains(t, out, "truncated")
	assert.NotContains(t, out, secret)
}
