package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func site1Config() FirewallConfig {
	return FirewallConfig{
		Hostname:     "fortigate-site1",
		LANIP:        "10.0.2.1",
		LANNetmask:   "255.255.255.0",
		TunnelName:   "site1-to-site2",
		PeerAddress:  "203.0.113.20",
		PresharedKey: "supersecret",
		LocalSubnet:  "10.0.0.0/16",
		RemoteSubnet: "10.1.0.0/16",
	}
}

func TestRender(t *testing.T) {
	out, err := Render(site1Config())
	require.NoError(t, err)

	assert.Contains(t, out, "set hostname fortigate-site1")
	assert.Contains(t, out, "set admin-sport 443")
	assert.Contains(t, out, "edit port1")
	assert.Contains(t, out, "edit port2")
	assert.Contains(t, out, "set remote-gw 203.0.113.20")
	assert.Contains(t, out, "set psksecret supersecret")
	assert.Contains(t, out, "set src-subnet 10.0.0.0/16")
	assert.Contains(t, out, "set dst-subnet 10.1.0.0/16")
	assert.Contains(t, out, "set ike-version 2")
	// Both directions of the tunnel policy.
	assert.Contains(t, out, "set name outbound-vpn")
	assert.Contains(t, out, "set name inbound-vpn")
}

func TestRender_Overrides(t *testing.T) {
	cfg := site1Config()
	cfg.AdminPort = 8443
	cfg.WANInterface = "wan1"
	cfg.LANInterface = "lan1"

	out, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "set admin-sport 8443")
	assert.Contains(t, out, "edit wan1")
	assert.NotContains(t, out, "port1")
}

func TestRender_MissingFields(t *testing.T) {
	cfg := site1Config()
	cfg.PresharedKey = ""
	cfg.TunnelName = ""

	_, err := Render(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preshared key")
	assert.Contains(t, err.Error(), "tunnel name")
}
