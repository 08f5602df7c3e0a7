package config

import (
	"github.com/samber/lo"

	"github.com/vovakirdan/guildchat/internal/core"
)

// ServerDefs converts the configured servers into access table definitions.
func (c Config) ServerDefs() []core.ServerDef {
	return lo.Map(c.Servers, func(s ServerConfig, _ int) core.ServerDef {
		return core.ServerDef{
			Server: core.Server{
				ID:   s.ID,
				Name: s.Name,
				Icon: s.Icon,
				Channels: lo.Map(s.Channels, func(ch ChannelConfig, _ int) core.Channel {
					return core.Channel{ID: ch.ID, Name: lo.CoalesceOrEmpty(ch.Name, ch.ID), Type: core.ChannelType(lo.CoalesceOrEmpty(ch.Type, string(core.ChannelText)))}
				}),
			},
			Members: lo.Map(s.Members, func(m MemberConfig, _ int) core.Member {
				return core.Member{Name: m.Name, Role: core.Role(m.Role)}
			}),
		}
	})
}

// AccessTable builds the static access table from the configured servers.
func (c Config) AccessTable() (*core.AccessTable, error) {
	return core.NewAccessTable(c.ServerDefs())
}
