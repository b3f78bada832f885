// Package bootstrap renders FortiGate day-zero configuration from a
// structured record. It is a pure function with no knowledge of the
// orchestration core: the rendered text is uploaded by the infrastructure
// description as instance user data.
package bootstrap

import (
	"fmt"
	"strings"
	"text/template"
)

// FirewallConfig describes one firewall's bootstrap parameters.
type FirewallConfig struct {
	Hostname      string
	AdminPort     int
	WANInterface  string
	LANInterface  string
	LANIP         string
	LANNetmask    string
	TunnelName    string
	PeerAddress   string
	PresharedKey  string
	LocalSubnet   string
	RemoteSubnet  string
	RemoteGateway string
}

// Validate checks the fields the template cannot default.
func (c FirewallConfig) Validate() error {
	var missing []string
	if c.Hostname == "" {
		missing = append(missing, "hostname")
	}
	if c.TunnelName == "" {
		missing = append(missing, "tunnel name")
	}
	if c.PeerAddress == "" {
		missing = append(missing, "peer address")
	}
	if c.PresharedKey == "" {
		missing = append(missing, "preshared key")
	}
	if c.LocalSubnet == "" || c.RemoteSubnet == "" {
		missing = append(missing, "tunnel subnets")
	}
	if len(missing) > 0 {
		return fmt.Errorf("firewall config missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

var configTemplate = template.Must(template.New("fortigate").Parse(`config system global
    set hostname {{.Hostname}}
    set admin-sport {{.AdminPort}}
end
config system interface
    edit {{.WANInterface}}
        set mode dhcp
        set allowaccess ping https ssh
    next
    edit {{.LANInterface}}
        set mode static
        set ip {{.LANIP}} {{.LANNetmask}}
        set allowaccess ping
    next
end
config vpn ipsec phase1-interface
    edit {{.TunnelName}}
        set interface {{.WANInterface}}
        set ike-version 2
        set peertype any
        set proposal aes256-sha256
        set remote-gw {{.PeerAddress}}
        set psksecret {{.PresharedKey}}
    next
end
config vpn ipsec phase2-interface
    edit {{.TunnelName}}
        set phase1name {{.TunnelName}}
        set proposal aes256-sha256
        set src-subnet {{.LocalSubnet}}
        set dst-subnet {{.RemoteSubnet}}
    next
end
config router static
    edit 10
        set dst {{.RemoteSubnet}}
        set device {{.TunnelName}}
    next
end
config firewall policy
    edit 10
        set name outbound-vpn
        set srcintf {{.LANInterface}}
        set dstintf {{.TunnelName}}
        set srcaddr all
        set dstaddr all
        set action accept
        set schedule always
        set service ALL
    next
    edit 11
        set name inbound-vpn
        set srcintf {{.TunnelName}}
        set dstintf {{.LANInterface}}
        set srcaddr all
        set dstaddr all
        set action accept
        set schedule always
        set service ALL
    next
end
`))

// Render produces the bootstrap text for one firewall. Defaults: admin
// console on 443, WAN on port1, LAN on port2.
func Render(cfg FirewallConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if cfg.AdminPort == 0 {
		cfg.AdminPort = 443
	}
	if cfg.WANInterface == "" {
		cfg.WANInterface = "port1"
	}
	if cfg.LANInterface == "" {
		cfg.LANInterface = "port2"
	}

	var sb strings.Builder
	if err := configTemplate.Execute(&sb, cfg); err != nil {
		return "", fmt.Errorf("failed to render bootstrap config: %w", err)
	}
	return sb.String(), nil
}
