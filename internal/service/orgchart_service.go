package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/RorolRoro/tkg-site/internal/discord"
	"github.com/RorolRoro/tkg-site/internal/domain"
	"github.com/RorolRoro/tkg-site/internal/persistence"
	"github.com/RorolRoro/tkg-site/internal/policy"
	apperrors "github.com/RorolRoro/tkg-site/pkg/util"
)

const orgChartCacheKey = "orgchart:snapshot"

// OrgChartService builds the staff roster from the guild member list. The
// role-ID table serves presentation only; it plays no part in the ticket
// permission path.
type OrgChartService struct {
	guild  *discord.Client
	cache  *persistence.Redis
	policy *policy.Policy
	ttl    time.Duration
	logger *zap.Logger
}

// NewOrgChartService constructs the service.
func NewOrgChartService(guild *discord.Client, cache *persistence.Redis, p *policy.Policy, ttl time.Duration, logger *zap.Logger) *OrgChartService {
	return &OrgChartService{guild: guild, cache: cache, policy: p, ttl: ttl, logger: logger}
}

// Chart returns the staff roster, serving the cached snapshot when fresh and
// rebuilding it from the guild member list on a miss. Cache failures degrade
// to a direct rebuild.
func (s *OrgChartService) Chart(ctx context.Context) (*domain.OrgChart, error) {
	if cached, err := s.cache.Get(ctx, orgChartCacheKey); err == nil {
		var chart domain.OrgChart
		if err := json.Unmarshal([]byte(cached), &chart); err == nil {
			return &chart, nil
		}
		s.logger.Warn("discarding unreadable org chart cache entry")
	}

	chart, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, chart)
	return chart, nil
}

// Refresh drops the cached snapshot and rebuilds it from the guild. Admin
// only; the regular Chart path keeps serving the cache until its TTL.
func (s *OrgChartService) Refresh(ctx context.Context) (*domain.OrgChart, error) {
	if err := s.cache.Del(ctx, orgChartCacheKey); err != nil {
		s.logger.Warn("unable to drop org chart cache", zap.Error(err))
	}
	chart, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, chart)
	return chart, nil
}

func (s *OrgChartService) store(ctx context.Context, chart *domain.OrgChart) {
	if raw, err := json.Marshal(chart); err == nil {
		if err := s.cache.SetEx(ctx, orgChartCacheKey, string(raw), s.ttl); err != nil {
			s.logger.Warn("unable to cache org chart", zap.Error(err))
		}
	}
}

func (s *OrgChartService) build(ctx context.Context) (*domain.OrgChart, error) {
	if s.guild == nil {
		return nil, apperrors.NewUpstreamUnavailable("discord guild not configured", nil)
	}
	members, err := s.guild.GuildMembers(ctx)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable("guild member list unavailable", err)
	}
	return assembleChart(members, s.policy.OrgRoles), nil
}

// assembleChart groups guild members under their highest mapped role and
// orders tiers by descending rank, members alphabetically. Bots and members
// with no mapped role are left out.
func assembleChart(members []*discordgo.Member, orgRoles []policy.OrgRoleEntry) *domain.OrgChart {
	roleByID := make(map[string]policy.OrgRoleEntry, len(orgRoles))
	for _, entry := range orgRoles {
		roleByID[entry.RoleID] = entry
	}

	tiers := make(map[string]*domain.OrgTier)
	for _, member := range members {
		if member.User == nil || member.User.Bot {
			continue
		}
		best, ok := highestOrgRole(member.Roles, roleByID)
		if !ok {
			continue
		}
		tier, exists := tiers[best.Label]
		if !exists {
			tier = &domain.OrgTier{Label: best.Label, Rank: best.Rank}
			tiers[best.Label] = tier
		}
		tier.Members = append(tier.Members, domain.OrgMember{
			DiscordID:   member.User.ID,
			Username:    member.User.Username,
			DisplayName: discord.DisplayName(member),
			AvatarURL:   member.User.AvatarURL("128"),
			RoleLabel:   best.Label,
		})
	}

	chart := &domain.OrgChart{SyncedAt: time.Now().UTC()}
	for _, tier := range tiers {
		sort.Slice(tier.Members, func(i, j int) bool {
			return tier.Members[i].DisplayName < tier.Members[j].DisplayName
		})
		chart.Tiers = append(chart.Tiers, *tier)
	}
	sort.Slice(chart.Tiers, func(i, j int) bool {
		return chart.Tiers[i].Rank > chart.Tiers[j].Rank
	})
	return chart
}

// highestOrgRole picks the highest-ranked mapped role the member holds.
func highestOrgRole(roleIDs []string, table map[string]policy.OrgRoleEntry) (policy.OrgRoleEntry, bool) {
	var best policy.OrgRoleEntry
	found := false
	for _, id := range roleIDs {
		entry, ok := table[id]
		if !ok {
			continue
		}
		if !found || entry.Rank > best.Rank {
			best = entry
			found = true
		}
	}
	return best, found
}
