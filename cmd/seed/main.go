// Command seed loads a small set of sample data for local development:
// one user, a couple of locations and tags, and a handful of rated dishes.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/tastelog/tastelog/internal/catalog"
	"github.com/tastelog/tastelog/internal/config"
	"github.com/tastelog/tastelog/internal/domain"
	"github.com/tastelog/tastelog/internal/repository"
	"github.com/tastelog/tastelog/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "[tastelog-seed] ", log.LstdFlags|log.Lmsgprefix)

	if err := run(logger); err != nil {
		logger.Fatalf("seed failed: %v", err)
	}
	logger.Println("seed complete")
}

func run(logger *log.Logger) error {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.New(ctx, cfg.DBURL, store.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer st.Close()

	repos := repository.New(st)

	user, err := seedUser(ctx, repos, "foodie", "foodie@example.com", "hungry-hippo")
	if err != nil {
		return err
	}
	logger.Printf("user %s (%s)", user.Username, user.ID)

	tagIDs := map[string]string{}
	for _, name := range []string{"spicy", "vegetarian", "noodles", "comfort food"} {
		tag, err := repos.Tags.UpsertByName(ctx, name)
		if err != nil {
			return err
		}
		tagIDs[name] = tag.ID
	}

	hawker, err := repos.Locations.UpsertByName(ctx, "Maxwell Food Centre", "1 Kadayanallur St", ptr("069184"))
	if err != nil {
		return err
	}
	bistro, err := repos.Locations.UpsertByName(ctx, "Tiong Bahru Bistro", "56 Eng Hoon St", nil)
	if err != nil {
		return err
	}

	dishes := []struct {
		draft  catalog.DishDraft
		scores [][3]int
	}{
		{
			draft: catalog.DishDraft{
				Name:        "Laksa",
				Description: ptr("Rich coconut broth with thick rice noodles."),
				Price:       6.50,
				PortionSize: "regular",
				LocationID:  hawker.ID,
				TagIDs:      []string{tagIDs["spicy"], tagIDs["noodles"]},
			},
			scores: [][3]int{{5, 4, 4}, {4, 4, 5}},
		},
		{
			draft: catalog.DishDraft{
				Name:        "Chilli Crab Pasta",
				Description: ptr("House pasta tossed in chilli crab sauce."),
				Price:       18.00,
				PortionSize: "large",
				LocationID:  bistro.ID,
				TagIDs:      []string{tagIDs["spicy"]},
			},
			scores: [][3]int{{5, 3, 5}},
		},
		{
			draft: catalog.DishDraft{
				Name:        "Mushroom Congee",
				Price:       4.80,
				PortionSize: "small",
				LocationID:  hawker.ID,
				TagIDs:      []string{tagIDs["vegetarian"], tagIDs["comfort food"]},
			},
			scores: [][3]int{{3, 4, 3}},
		},
	}

	for _, d := range dishes {
		dish, err := repos.Dishes.Insert(ctx, d.draft)
		if err != nil {
			return err
		}
		for _, s := range d.scores {
			if _, err := repos.Ratings.Insert(ctx, catalog.RatingDraft{
				DishID:       dish.ID,
				UserID:       user.ID,
				Taste:        s[0],
				Portion:      s[1],
				Presentation: s[2],
			}); err != nil {
				return err
			}
		}
		logger.Printf("dish %s (%s)", dish.Name, dish.ID)
	}

	return nil
}

func seedUser(ctx context.Context, repos *repository.Repository, username, email, password string) (domain.User, error) {
	if user, err := repos.Users.ByLogin(ctx, username); err == nil {
		return user, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	return repos.Users.Insert(ctx, username, email, string(hash))
}

func ptr(s string) *string { return &s }
