package utilities_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfigJson struct {
	Name  string         `json:"name"`
	Port  uint16         `json:"port"`
	Items []mockItemJson `json:"items"`
}

type mockConfig struct {
	Name  string
	Port  uint16
	Items []mockItem
}

func (mcj mockConfigJson) ConvertToDomain() mockConfig {
	return mockConfig{
		Name:  mcj.Name,
		Port:  mcj.Port,
		Items: utilities.ConvertJsonArrayToDomain[mockItemJson, mockItem](mcj.Items),
	}
}

type mockItemJson struct {
	Selector string `json:"selector"`
}

type mockItem struct {
	Selector string
}

func (mij mockItemJson) ConvertToDomain() mockItem {
	return mockItem{Selector: mij.Selector}
}

type mockSerializable struct {
	Data string `json:"data"`
}

func (ms mockSerializable) Serialize() ([]byte, error) {
	return utilities.Serialize[mockSerializable](ms)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeTemp(t, "config.json", `{"name":"router","port":9000,"items":[{"selector":"aabbccdd"}]}`)

	result, err := utilities.ReadConfig[mockConfigJson, mockConfig](path)
	require.NoError(t, err)

	assert.Equal(t, "router", result.Name)
	assert.Equal(t, uint16(9000), result.Port)
	assert.Equal(t, []mockItem{{Selector: "aabbccdd"}}, result.Items)
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") },
		},
		{
			name: "invalid json",
			path: func(t *testing.T) string { return writeTemp(t, "bad.json", `{"name":`) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := utilities.ReadConfig[mockConfigJson, mockConfig](tt.path(t))
			assert.Error(t, err)
		})
	}
}

func TestConvertJsonArrayToDomainEmpty(t *testing.T) {
	result := utilities.ConvertJsonArrayToDomain[mockItemJson, mockItem](nil)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestLoadEnvironment(t *testing.T) {
	path := writeTemp(t, ".env", "ROUTER_TEST_FROM_FILE=file\nROUTER_TEST_PRESET=file\n")
	t.Setenv("ROUTER_TEST_PRESET", "env")

	require.NoError(t, utilities.LoadEnvironment(path, filepath.Join(t.TempDir(), "missing.env")))
	t.Cleanup(func() { os.Unsetenv("ROUTER_TEST_FROM_FILE") })

	assert.Equal(t, "file", os.Getenv("ROUTER_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("ROUTER_TEST_PRESET"))
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("ROUTER_TEST_SET", " value ")
	t.Setenv("ROUTER_TEST_BLANK", "  ")

	assert.Equal(t, "value", utilities.GetEnvOrDefault("ROUTER_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", utilities.GetEnvOrDefault("ROUTER_TEST_BLANK", "fallback"))
	assert.Equal(t, "fallback", utilities.GetEnvOrDefault("ROUTER_TEST_UNSET_KEY", "fallback"))
}

func TestDecodeHexFixed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		size    int
		want    []byte
		wantErr bool
	}{
		{"plain", "aabbccdd", 4, []byte{0xaa, 0xbb, 0xcc, 0xdd}, false},
		{"prefixed", "0xAABBCCDD", 4, []byte{0xaa, 0xbb, 0xcc, 0xdd}, false},
		{"wrong size", "aabb", 4, nil, true},
		{"not hex", "zzzzzzzz", 4, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := utilities.DecodeHexFixed(tt.input, tt.size)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerializableInterface(t *testing.T) {
	var s utilities.Serializable = mockSerializable{Data: "estop"}

	out, err := s.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":"estop"}`, string(out))
}

func TestMapAndTernary(t *testing.T) {
	doubled := utilities.Map([]int{1, 2, 3}, func(i int) int { return i * 2 })
	assert.Equal(t, []int{2, 4, 6}, doubled)

	empty := utilities.Map([]int(nil), func(i int) string { return "" })
	require.NotNil(t, empty)
	out, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	assert.Equal(t, "owner", utilities.Ternary(true, "owner", "proof"))
	assert.Equal(t, "proof", utilities.Ternary(false, "owner", "proof"))
}

func TestFailOnErrorIgnoresNil(t *testing.T) {
	assert.NotPanics(t, func() { utilities.FailOnError(nil, "unreachable") })
}
