// Package messages fans change notifications out to configured chat
// providers. Providers are best-effort: a failing or disabled provider never
// blocks the mutation that triggered the message.
package messages

type MessageConfig struct {
	Provider string
	Channel  string
	Text     string
}

type Provider interface {
	SendMessage(configs ...MessageConfig) error
}

type ProviderGroup struct {
	providers []Provider
}

func NewProviderGroup(providers ...Provider) *ProviderGroup {
	return &ProviderGroup{providers: providers}
}

func (g *ProviderGroup) SendMessage(configs ...MessageConfig) {
	for _, p := range g.providers {
		if p == nil {
			continue
		}

		p.SendMessage(configs...)
	}
}
