package state

import (
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandClientConfig(t *testing.T) {
	cfg := ClientCfg{Portal: &InetService{Host: "p", Port: 1}}
	ExpandClientConfig(&cfg)
	assert.Equal(t, DefaultScheme, cfg.Scheme)
	assert.Equal(t, DefaultView, cfg.View)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestClientCfg_Yaml(t *testing.T) {
	input := `
portal: portal.example.net:6671
view: campus
timeout: 5s
dns_resolvers:
  - 1.1.1.1:53
`
	var cfg ClientCfg
	require.NoError(t, yaml.Unmarshal([]byte(input), &cfg))
	ExpandClientConfig(&cfg)
	assert.Equal(t, &InetService{Host: "portal.example.net", Port: 6671}, cfg.Portal)
	assert.Nil(t, cfg.Discovery)
	assert.Equal(t, "campus", cfg.View)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"1.1.1.1:53"}, cfg.DnsResolvers)
	assert.NoError(t, ClientConfigValidator(&cfg))

	out, err := yaml.Marshal(&cfg)
	require.NoError(t, err)
	var again ClientCfg
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, cfg, again)
}
