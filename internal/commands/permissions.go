package commands

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"guildbot/internal/events"

	"github.com/bwmarrin/discordgo"
)

func permTargetOptions(verb string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "The user to " + verb, Required: true},
		{Type: discordgo.ApplicationCommandOptionString, Name: "node", Description: "A node (games.bj) or a whole category (games)", Required: true},
	}
}

var PermissionCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "perm",
		Description: "Manage who may use which commands in this server",
		Options: []*discordgo.ApplicationCommandOption{
			{Name: "add", Description: "Grant a node or category", Type: discordgo.ApplicationCommandOptionSubCommand, Options: permTargetOptions("grant to")},
			{Name: "remove", Description: "Revoke a node or category", Type: discordgo.ApplicationCommandOptionSubCommand, Options: permTargetOptions("revoke from")},
			{
				Name:        "list",
				Description: "Show a user's nodes in this server",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "The user to inspect", Required: true},
				},
			},
			{Name: "nodes", Description: "Show every node by category", Type: discordgo.ApplicationCommandOptionSubCommand},
		},
	},
}

func HandlePermissionCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		return
	}
	if DB == nil {
		respondError(s, i, "Database not initialized.")
		return
	}

	subcmd := data.Options[0]
	opts := optionMap(subcmd.Options)

	switch subcmd.Name {
	case "add":
		changePermissions(s, i, opts["user"].UserValue(s), opts["node"].StringValue(), true)
	case "remove":
		changePermissions(s, i, opts["user"].UserValue(s), opts["node"].StringValue(), false)
	case "list":
		handlePermList(s, i, opts["user"].UserValue(s))
	case "nodes":
		handlePermNodes(s, i)
	}
}

// changePermissions grants or revokes every node input resolves to. Partial
// failures are logged and the rest still apply.
func changePermissions(s *discordgo.Session, i *discordgo.InteractionCreate, user *discordgo.User, input string, grant bool) {
	nodes := resolveNodes(input)
	if len(nodes) == 0 {
		respondError(s, i, fmt.Sprintf("Unknown permission node or category: `%s`. See `/perm nodes`.", input))
		return
	}
	sort.Strings(nodes)

	apply, verb, tag := DB.RevokePermission, "Revoked", "PERM REMOVE"
	if grant {
		apply, verb, tag = DB.GrantPermission, "Granted", "PERM ADD"
	}

	var changed []string
	for _, node := range nodes {
		if err := apply(i.GuildID, user.ID, node); err != nil {
			log.Printf("[%s ERROR] Guild: %s | %s for %s: %v", tag, i.GuildID, node, user.ID, err)
			continue
		}
		changed = append(changed, node)
	}
	if len(changed) == 0 {
		respondError(s, i, "No permissions were changed.")
		return
	}

	log.Printf("[%s] Guild: %s | %s -> %s | %v", tag, i.GuildID, i.Member.User.Username, user.Username, changed)
	AuditLog.ModerationAction(events.Action{
		Kind:      "Permission",
		Moderator: i.Member.User,
		Target:    user,
		Detail:    fmt.Sprintf("%s %s", verb, formatNodes(changed)),
	})
	respondSuccess(s, i, fmt.Sprintf("✅ %s %s for **%s**.", verb, formatNodes(changed), user.Username))
}

// resolveNodes expands a node or a whole category ("games") into nodes.
func resolveNodes(input string) []string {
	if IsValidPermissionNode(input) {
		return []string{input}
	}
	if nodes := GetPermissionsByCategory(input); len(nodes) > 0 {
		return nodes
	}
	return nil
}

func handlePermList(s *discordgo.Session, i *discordgo.InteractionCreate, user *discordgo.User) {
	nodes, err := DB.Permissions(i.GuildID, user.ID)
	if err != nil {
		log.Printf("[PERM ERROR] Guild: %s | list %s: %v", i.GuildID, user.ID, err)
		respondError(s, i, "Failed to list permissions.")
		return
	}
	if len(nodes) == 0 {
		respondEphemeral(s, i, fmt.Sprintf("**%s** has no permissions in this server.", user.Username))
		return
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:  "📋 Permissions for " + user.Username,
		Color:  0x5865F2,
		Fields: categoryFields(nodes),
	})
}

func handlePermNodes(s *discordgo.Session, i *discordgo.InteractionCreate) {
	all := make([]string, 0, len(CommandPermissionMap))
	for _, node := range CommandPermissionMap {
		all = append(all, node)
	}
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Permission Nodes",
		Description: "Grant a single node or a whole category with `/perm add`.",
		Color:       0x5865F2,
		Fields:      categoryFields(uniqueStrings(all)),
	})
}

// categoryFields groups nodes into one embed field per category.
func categoryFields(nodes []string) []*discordgo.MessageEmbedField {
	byCategory := make(map[string][]string)
	for _, n := range nodes {
		category, _, _ := strings.Cut(n, ".")
		byCategory[category] = append(byCategory[category], n)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fields := make([]*discordgo.MessageEmbedField, 0, len(categories))
	for _, c := range categories {
		sort.Strings(byCategory[c])
		fields = append(fields, &discordgo.MessageEmbedField{Name: c, Value: formatNodes(byCategory[c])})
	}
	return fields
}

func formatNodes(nodes []string) string {
	return "`" + strings.Join(nodes, "`, `") + "`"
}
