// Command main runs the database seeder for TaskBuddy.
package main

import (
	"context"
	"flag"
	"log"

	"taskbuddy/internal/config"
	"taskbuddy/internal/database"
	"taskbuddy/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 3, "Posts per user")
	workoutsPerUser := flag.Int("workouts", 5, "Completed workouts per user")
	friendsPerUser := flag.Int("friends", 3, "Friend requests sent per user")
	likesPerPost := flag.Int("likes", 4, "Likes per post")
	commentsPerPost := flag.Int("comments", 2, "Comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 = time based)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{
		NumUsers:        *numUsers,
		PostsPerUser:    *postsPerUser,
		WorkoutsPerUser: *workoutsPerUser,
		FriendsPerUser:  *friendsPerUser,
		LikesPerPost:    *likesPerPost,
		CommentsPerPost: *commentsPerPost,
		ShouldClean:     *shouldClean,
		RandomSeed:      *randomSeed,
	})
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	sum, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d workouts, %d friendships, %d posts, %d likes, %d comments",
		sum.Users, sum.Workouts, sum.Friendships, sum.Posts, sum.Likes, sum.Comments)
	log.Printf("Database now holds %d users", sum.TotalUsers)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
