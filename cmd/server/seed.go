package main

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/realtime"
	"github.com/anonto42/effisocial/backend/internal/router"
	"github.com/anonto42/effisocial/backend/internal/services"
	"github.com/anonto42/effisocial/backend/pkg/config"
	"github.com/anonto42/effisocial/backend/pkg/log"
)

const seedPassword = "password123"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the databases with fake users, groups and posts",
	Long: `Create fake accounts through the regular services so every invariant
holds. All seeded accounts share the password "password123".`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().Int("users", 20, "number of users to create")
	seedCmd.Flags().Int("posts", 3, "posts per user")
}

func runSeed(cmd *cobra.Command, args []string) error {
	userCount, _ := cmd.Flags().GetInt("users")
	postsPerUser, _ := cmd.Flags().GetInt("posts")
	if userCount < 2 {
		return fmt.Errorf("--users must be at least 2")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}
	defer db.CloseDB()

	ctx := cmd.Context()
	if err := migrate(ctx, db); err != nil {
		return err
	}

	// The hub is never run; notifications land in the inbox only.
	svc := router.NewServices(cfg, router.NewRepositories(db.Postgres, db.MongoDB), realtime.NewHub(nil), nil, nil)
	logger := log.WithComponent("seed")

	actors := make([]services.Actor, 0, userCount)
	for i := 0; i < userCount; i++ {
		name := gofakeit.FirstName() + gofakeit.Numerify("####")
		resp, err := svc.Auth.Register(ctx, models.RegisterRequest{
			Username: name,
			Email:    strings.ToLower(name) + "@example.com",
			Password: seedPassword,
		})
		if err != nil {
			logger.Warn().Err(err).Str("username", name).Msg("skipping user")
			continue
		}
		actors = append(actors, services.Actor{ID: resp.User.ID})
	}

	// Each user befriends the next one; every third pair stays pending.
	for i := 0; i+1 < len(actors); i++ {
		req, err := svc.Friends.SendFriendRequest(ctx, actors[i].ID, actors[i+1].ID)
		if err != nil {
			continue
		}
		if i%3 != 0 {
			_, _ = svc.Friends.AcceptFriendRequest(ctx, actors[i+1].ID, req.ID)
		}
	}

	var groupIDs []uint
	for i := 0; i < len(actors)/5+1 && i < len(actors); i++ {
		privacy := models.PrivacyPublic
		if gofakeit.Bool() {
			privacy = models.PrivacyPrivate
		}
		g, err := svc.Groups.Create(ctx, actors[i], models.CreateGroupRequest{
			Name:        gofakeit.Company(),
			Description: gofakeit.Phrase(),
			Privacy:     privacy,
		}, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("skipping group")
			continue
		}
		groupIDs = append(groupIDs, g.ID)
		for _, member := range actors {
			if member.ID != actors[i].ID && gofakeit.Number(0, 2) == 0 {
				_, _ = svc.Groups.AddMember(ctx, actors[i], g.ID, member.ID)
			}
		}
	}

	posts := 0
	for _, actor := range actors {
		for j := 0; j < postsPerUser; j++ {
			req := models.CreatePostRequest{Content: gofakeit.Quote()}
			if len(groupIDs) > 0 && gofakeit.Number(0, 3) == 0 {
				req.GroupID = groupIDs[gofakeit.Number(0, len(groupIDs)-1)]
			}
			p, err := svc.Posts.Create(ctx, actor, req, nil)
			if err != nil {
				// not a member of the picked group
				continue
			}
			posts++
			other := actors[gofakeit.Number(0, len(actors)-1)]
			_, _ = svc.Posts.Like(ctx, other, p.ID.Hex())
			if gofakeit.Bool() {
				_, _ = svc.Posts.AddComment(ctx, other, p.ID.Hex(), gofakeit.Phrase())
			}
		}
	}

	logger.Info().
		Int("users", len(actors)).
		Int("groups", len(groupIDs)).
		Int("posts", posts).
		Msg("seed completed")
	return nil
}
