package repository

import (
	"math"
	"strings"
	"time"
)

func day(value string) time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return t
}

// fallbackArticles is the bundled dataset served when the article store is
// unreachable or unconfigured. Kept newest-first so the slice order matches
// the store's created_at DESC ordering.
var fallbackArticles = []ArticleView{
	{
		ID:          8,
		Title:       "The Quiet Science of Cat Naps",
		Description: "Why your cat sleeps sixteen hours a day, and what the research actually says about it.",
		Content:     "Cats are crepuscular hunters. The long naps between dawn and dusk patrols are not laziness but energy budgeting honed over millennia.\n\nKittens sleep even longer, and most of it is deep sleep tied to growth hormone release.",
		Image:       "https://images.example.com/articles/cat-naps.jpg",
		Category:    "Cat",
		Author:      "Thompson P.",
		Date:        day("2024-09-11"),
		Likes:       321,
	},
	{
		ID:          7,
		Title:       "Finding Your Voice as a Writer",
		Description: "Voice is not something you invent. It is something you stop suppressing.",
		Content:     "Every first draft borrows someone else's cadence. Keep writing past it.\n\nThe writers you admire sound like themselves because they wrote long enough to wear the imitation away.",
		Image:       "https://images.example.com/articles/writers-voice.jpg",
		Category:    "Inspiration",
		Author:      "Thompson P.",
		Date:        day("2024-08-27"),
		Likes:       190,
	},
	{
		ID:          6,
		Title:       "Understanding Cat Body Language",
		Description: "A slow blink is a compliment. A flicking tail is a warning. Learn to read the difference.",
		Content:     "Cats communicate constantly; humans just miss most of it.\n\nEars, whiskers and tail position each carry meaning, and context changes everything. A belly display is trust, not an invitation.",
		Image:       "https://images.example.com/articles/cat-language.jpg",
		Category:    "Cat",
		Author:      "Thompson P.",
		Date:        day("2024-08-18"),
		Likes:       412,
	},
	{
		ID:          5,
		Title:       "Morning Routines That Actually Stick",
		Description: "Forget the five o'clock club. The only routine that works is the one you can repeat on a bad day.",
		Content:     "Habit research is unglamorous: start small, anchor to an existing cue, and make failure cheap.\n\nA two-minute routine kept daily beats a two-hour routine kept twice.",
		Image:       "https://images.example.com/articles/morning-routine.jpg",
		Category:    "General",
		Author:      "Thompson P.",
		Date:        day("2024-07-30"),
		Likes:       156,
	},
	{
		ID:          4,
		Title:       "The Unlikely History of the Housecat",
		Description: "From grain-store guardian to internet royalty in ten thousand years.",
		Content:     "Cats domesticated themselves. When early farmers stockpiled grain, rodents followed, and the boldest wildcats followed the rodents.\n\nUnlike dogs, cats were never bred for work, which is why they remain so close to their wild ancestors.",
		Image:       "https://images.example.com/articles/housecat-history.jpg",
		Category:    "Cat",
		Author:      "Thompson P.",
		Date:        day("2024-07-12"),
		Likes:       287,
	},
	{
		ID:          3,
		Title:       "Slow Travel: Seeing More by Doing Less",
		Description: "Three cities in ten days teaches you airports. One city in ten days teaches you a city.",
		Content:     "The itinerary is the enemy of the encounter.\n\nStay long enough in one place to have a regular cafe, and the place starts telling you things no guidebook prints.",
		Image:       "https://images.example.com/articles/slow-travel.jpg",
		Category:    "General",
		Author:      "Thompson P.",
		Date:        day("2024-06-25"),
		Likes:       98,
	},
	{
		ID:          2,
		Title:       "What Rejection Letters Taught Me",
		Description: "Forty-two rejections, one acceptance, and everything the forty-two taught me first.",
		Content:     "Rejection is data, not verdict.\n\nKeep a log of every submission and you will notice the letters getting warmer long before the first yes arrives. That slope is the real signal.",
		Image:       "https://images.example.com/articles/rejection-letters.jpg",
		Category:    "Inspiration",
		Author:      "Thompson P.",
		Date:        day("2024-06-02"),
		Likes:       134,
	},
	{
		ID:          1,
		Title:       "A Field Guide to Everyday Curiosity",
		Description: "Curiosity is a practice, not a personality trait. Here is how to train it.",
		Content:     "Write down three questions a day that you genuinely do not know the answer to.\n\nMost will be small. Some will be doors. The practice is learning to tell which is which.",
		Image:       "https://images.example.com/articles/curiosity.jpg",
		Category:    "General",
		Author:      "Thompson P.",
		Date:        day("2024-05-14"),
		Likes:       77,
	},
}

// fallbackList paginates the bundled dataset with the same semantics as the
// primary tier.
func fallbackList(page, pageSize int, category string) ListResult {
	filtered := fallbackArticles
	if category != "" && category != CategoryHighlight {
		filtered = make([]ArticleView, 0, len(fallbackArticles))
		for _, a := range fallbackArticles {
			if a.Category == category {
				filtered = append(filtered, a)
			}
		}
	}

	totalPages := int(math.Ceil(float64(len(filtered)) / float64(pageSize)))

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	items := make([]ArticleView, end-start)
	copy(items, filtered[start:end])

	return ListResult{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		HasMore:     page < totalPages,
	}
}

// fallbackSearch is a case-insensitive substring match over title,
// description and content, capped at SearchLimit.
func fallbackSearch(keyword string) []ArticleView {
	kw := strings.ToLower(keyword)
	out := make([]ArticleView, 0, SearchLimit)
	for _, a := range fallbackArticles {
		if strings.Contains(strings.ToLower(a.Title), kw) ||
			strings.Contains(strings.ToLower(a.Description), kw) ||
			strings.Contains(strings.ToLower(a.Content), kw) {
			out = append(out, a)
			if len(out) == SearchLimit {
				break
			}
		}
	}
	return out
}

func fallbackGet(id uint) *ArticleView {
	for _, a := range fallbackArticles {
		if a.ID == id {
			match := a
			return &match
		}
	}
	return nil
}

// fallbackCategories derives the category list from the dataset, preserving
// first-appearance order of the newest articles.
func fallbackCategories() []CategoryView {
	seen := make(map[string]bool)
	out := make([]CategoryView, 0, 4)
	for _, a := range fallbackArticles {
		if !seen[a.Category] {
			seen[a.Category] = true
			out = append(out, CategoryView{ID: uint(len(out) + 1), Name: a.Category})
		}
	}
	return out
}
