package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Oksidation/iq-testing-app/internal/config"
	"github.com/Oksidation/iq-testing-app/internal/database"
	"github.com/Oksidation/iq-testing-app/internal/logger"
	"github.com/Oksidation/iq-testing-app/internal/model"
	"github.com/Oksidation/iq-testing-app/internal/repository"
)

// seedQuestion is a compact authoring form expanded into model.Question rows.
type seedQuestion struct {
	prompt   string
	options  []string
	correct  string
	category string
}

type seedTest struct {
	title       string
	description string
	kind        model.TestKind
	questions   []seedQuestion
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Println("=== Seeding Test Catalog ===")

	seeds := []seedTest{
		{
			title:       "IQ Assessment",
			description: "Cognitive ability test with numerical, logical and spatial sections.",
			kind:        model.TestKindNormReferenced,
			questions: []seedQuestion{
				{"What number comes next: 2, 4, 8, 16, ...?", []string{"24", "32", "30", "28"}, "B", "numerical"},
				{"If 3x + 6 = 21, what is x?", []string{"3", "7", "5", "6"}, "C", "numerical"},
				{"Which number is one third of one half of 72?", []string{"12", "18", "24", "9"}, "A", "numerical"},
				{"What number comes next: 1, 1, 2, 3, 5, 8, ...?", []string{"11", "12", "13", "15"}, "C", "numerical"},
				{"All roses are flowers. Some flowers fade quickly. Therefore:", []string{"All roses fade quickly", "Some roses may fade quickly", "No roses fade quickly", "Flowers are roses"}, "B", "logical"},
				{"Book is to reading as fork is to:", []string{"Drawing", "Writing", "Eating", "Stirring"}, "C", "logical"},
				{"Which word does not belong: apple, banana, carrot, grape?", []string{"Apple", "Banana", "Carrot", "Grape"}, "C", "logical"},
				{"If all Bloops are Razzies and all Razzies are Lazzies, then all Bloops are definitely Lazzies.", []string{"True", "False", "Cannot be determined", "Only sometimes"}, "A", "logical"},
				{"A cube is unfolded into a cross shape. How many faces does the flattened shape have?", []string{"4", "5", "6", "8"}, "C", "spatial"},
				{"Which shape results from rotating the letter N by 90 degrees clockwise?", []string{"A shape like Z", "A shape like N", "A mirrored L", "A shape like M"}, "A", "spatial"},
				{"How many smaller cubes make up a 3x3x3 cube?", []string{"9", "18", "27", "36"}, "C", "spatial"},
				{"A square sheet is folded in half twice and a corner is cut off. How many holes appear when unfolded?", []string{"1", "2", "4", "8"}, "C", "spatial"},
			},
		},
		{
			title:       "Adult ADHD Self-Screen",
			description: "Frequency-based self-report screen. Answers range from Never to Very Often.",
			kind:        model.TestKindWeightedScale,
			questions: []seedQuestion{
				{"How often do you have trouble wrapping up the final details of a project?", nil, "", ""},
				{"How often do you have difficulty getting things in order for a task that requires organization?", nil, "", ""},
				{"How often do you have problems remembering appointments or obligations?", nil, "", ""},
				{"How often do you avoid or delay getting started on tasks that require a lot of thought?", nil, "", ""},
				{"How often do you fidget or squirm when you have to sit down for a long time?", nil, "", ""},
				{"How often do you feel overly active and compelled to do things, as if driven by a motor?", nil, "", ""},
			},
		},
		{
			title:       "General Knowledge Quiz",
			description: "Quick mixed-topic quiz scored by correct answers.",
			kind:        model.TestKindPlainCount,
			questions: []seedQuestion{
				{"Which planet is known as the Red Planet?", []string{"Venus", "Mars", "Jupiter", "Mercury"}, "B", ""},
				{"What is the largest ocean on Earth?", []string{"Atlantic", "Indian", "Pacific", "Arctic"}, "C", ""},
				{"Who painted the Mona Lisa?", []string{"Leonardo da Vinci", "Michelangelo", "Raphael", "Donatello"}, "A", ""},
				{"What is the chemical symbol for gold?", []string{"Ag", "Go", "Au", "Gd"}, "C", ""},
				{"Which country has the largest population?", []string{"United States", "India", "Indonesia", "Brazil"}, "B", ""},
			},
		},
	}

	// Frequency options shared by every weighted-scale question. Option
	// weights climb from A (never) to D (very often).
	frequencyOptions := []string{"Never", "Sometimes", "Often", "Very Often"}

	labels := []string{"A", "B", "C", "D", "E"}

	for _, seed := range seeds {
		t := &model.Test{
			Title:           seed.title,
			Description:     seed.description,
			Kind:            seed.kind,
			QuestionSeconds: cfg.QuestionSeconds,
		}
		if err := testRepo.Create(ctx, t); err != nil {
			fmt.Printf("Error creating test %q: %v\n", seed.title, err)
			continue
		}

		created := 0
		for i, sq := range seed.questions {
			optionTexts := sq.options
			if optionTexts == nil {
				optionTexts = frequencyOptions
			}

			options := make([]model.Option, 0, len(optionTexts))
			for j, text := range optionTexts {
				options = append(options, model.Option{Label: labels[j], Text: text})
			}

			// Weighted-scale questions have no correct option; the answer
			// itself carries the weight.
			correct := sq.correct
			if seed.kind == model.TestKindWeightedScale {
				correct = ""
			}

			q := &model.Question{
				TestID:        t.ID,
				Prompt:        sq.prompt,
				Options:       options,
				CorrectOption: correct,
				Category:      sq.category,
				OrderNum:      i,
			}
			if err := questionRepo.Create(ctx, q); err != nil {
				fmt.Printf("Error creating question %d of %q: %v\n", i+1, seed.title, err)
				continue
			}
			created++
		}

		fmt.Printf("Created test %q (%s) with %d/%d questions\n", seed.title, seed.kind, created, len(seed.questions))
	}

	fmt.Println("\nSeed completed!")
}
