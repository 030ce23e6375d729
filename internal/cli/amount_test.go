package cli

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWei(t *testing.T) {
	v, err := parseWei("1000")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), v)

	v, err = parseWei("0x10")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(16), v)

	for _, bad := range []string{"", "abc", "1.5", "-1"} {
		_, err := parseWei(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{"0.000000000000000001", "1"},
		{"0", "0"},
	}
	for _, tt := range tests {
		v, err := parseEther(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, v.String(), tt.in)
	}

	_, err := parseEther("0.0000000000000000001")
	assert.Error(t, err)
	_, err = parseEther("-1")
	assert.Error(t, err)
	_, err = parseEther("many")
	assert.Error(t, err)
}

func TestFormatEther(t *testing.T) {
	one, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, "1", formatEther(one))
	assert.Equal(t, "0.5", formatEther(big.NewInt(500000000000000000)))
	assert.Equal(t, "0", formatEther(new(big.Int)))
	assert.Equal(t, "0", formatEther(nil))
	assert.Equal(t, "0.000000000000000001", formatEther(big.NewInt(1)))
}

func TestGatewayURL(t *testing.T) {
	assert.Equal(t, "https://gw.io/ipfs/QmA/1.json", gatewayURL("gw.io", "ipfs://QmA/1.json"))
	assert.Equal(t, "https://gw.io/ipfs/QmA/1.json", gatewayURL("https://gw.io/", "QmA/1.json"))
	assert.Equal(t, "http://localhost:8080/ipfs/QmA/1.json", gatewayURL("http://localhost:8080", "ipfs://ipfs/QmA/1.json"))
}
