package util

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := "The address of the rbKV server. Multiple endpoints can be specified as a comma-separated list"
	wrapped := WrapString(text)

	for _, line := range strings.Split(wrapped, "\n") {
		require.LessOrEqual(t, len(line), Wrap, "line %q", line)
	}
	require.Equal(t, strings.Fields(text), strings.Fields(wrapped))
	require.Empty(t, WrapString("  "))
}

func TestGetSerializer(t *testing.T) {
	t.Cleanup(viper.Reset)

	for _, name := range []string{"json", "gob", "binary"} {
		viper.Set("serializer", name)
		s, err := GetSerializer()
		require.NoError(t, err)
		require.NotNil(t, s)
	}

	viper.Set("serializer", "xml")
	_, err := GetSerializer()
	require.Error(t, err)
}

func TestEnvironmentBinding(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("RBKV_TRANSPORT_ENDPOINTS", "http://a:1,http://b:2")
	t.Setenv("RBKV_TIMEOUT", "7")

	InitConfig()
	conf := GetClientConfig()
	require.Equal(t, []string{"http://a:1", "http://b:2"}, conf.Endpoints)
	require.Equal(t, 7, conf.TimeoutSecond)
}
