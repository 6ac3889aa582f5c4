package scrape

import (
	"context"

	"quote-archive/pkg/domain"
)

// seedSourceURL marks records whose text was verified across several sites
// rather than scraped from a single page.
const seedSourceURL = "https://multiple-sources"

// seedQuotes are verified quotes gathered from web research. Some sites
// block scraping outright, so their quotes ship with the collector;
// deduplication handles the overlap with live scrapes.
var seedQuotes = []string{
	"Power isn't something you're given. It's something you take.",
	"In this world, there are no sides. Only players.",
	"We're all puppets, Harold. Some of us just have more strings than others.",
	"The greatest weapon is not a gun or a bomb. It's the truth.",
	"Lies by omission are still lies, Harold. Some would argue they're the worst kind.",
	"Truth is such a rare thing, it is delightful to tell it.",
	"The thing about the truth is, not a lot of people can handle it.",
	"I can only lead you to the truth. I can't make you believe it.",
	"Value loyalty above all else.",
	"Betrayal is just loyalty reprioritized.",
	"A friend is a person who will help you move. A real friend is a person who will help you move a body.",
	"When you love someone, you have no control. That's what love is. Being powerless.",
	"If my circle of friends gets any smaller, it won't be a circle.",
	"The past is a ghost that never truly leaves us.",
	"Revenge isn't a passion. It's a disease. It eats away your mind and poisons your soul.",
	"There is nothing that can take the pain away. But eventually, you will find a way to live with it. There will be nightmares, and every day, when you wake up, it will be the first thing you think about. Until one day, it will be the second thing.",
	"Without pain there can be no real pleasure. Without the lows you have no way to measure the highs.",
	"The measure of a man is not in how he gets knocked to the mat, it's in how he gets up.",
	"Forgiveness is a luxury not everyone can afford.",
	"People say youth is wasted on the young. I disagree. I believe wisdom is wasted on the old.",
	"You can't judge a book by its cover. But you can by its first few chapters and certainly by its last.",
	"The best time to plant a tree is 20 years ago. The second best time is now. Luckily for you, I have three seedlings.",
	"Time is the ultimate luxury, I think. To be savored, not hoarded nor compressed nor controlled.",
	"Not every answer is worth knowing.",
	"I always found fear to be my most valuable sense.",
	"As you well know, one of the keys to my success is a clear and consistent understanding of my own limitations.",
	"Agent Keen, I have a tip. You're a winter, not an autumn. Stop wearing olive.",
	"I'm not a gumball machine, Lizzy. You don't get to just twist the handle whenever you want a treat.",
	"Please excuse the gun. I'd hate for them to think we were in cahoots.",
	"You look familiar. Have I threatened you before?",
	"It's good to meet you. I've heard nothing but terrible things.",
	"I have no interest in cases that I have no interest in.",
	"I had bullets. He had words. But when he was done talking for the first time, I truly understood which of those was more powerful.",
	"God can't protect you, but I can.",
	"You know the problem with drawing lines in the sand? With a breath of air, they disappear.",
	"As a rule, I consider jealousy to be a base emotion, but in this case, it's quite endearing.",
	"Hope is the worst of all evils because it prolongs the torment of man.",
	"I've made it my mission in life to identify, cultivate, and exploit the weakness in my enemies.",
	"Nothing is so common as the wish to be remarkable.",
	"Regret requires age or the passage of time. And believe me, time has a way of making all things clear.",
}

// SeedSource yields the built-in verified quote list.
type SeedSource struct{}

// NewSeedSource returns the seed source.
func NewSeedSource() *SeedSource { return &SeedSource{} }

func (s *SeedSource) Name() string { return "WebResearch" }

func (s *SeedSource) Scrape(ctx context.Context) ([]domain.Quote, error) {
	quotes := make([]domain.Quote, 0, len(seedQuotes))
	for _, text := range seedQuotes {
		if q, ok := MakeQuote(text, seedSourceURL, s.Name()); ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

var _ Source = (*SeedSource)(nil)
