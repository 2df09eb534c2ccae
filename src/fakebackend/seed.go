package fakebackend

import (
	"math/rand"
	"time"

	lorem "github.com/HandmadeNetwork/golorem"
)

// Seed fills the server with believable-looking records so list pages have
// something to paginate.
func (s *Server) Seed(newsCount, announcementCount, knowledgeCount int) {
	start := time.Now().AddDate(0, 0, -(newsCount + announcementCount + knowledgeCount))
	day := func(i int) time.Time {
		return start.AddDate(0, 0, i).Add(time.Duration(rand.Intn(8*60)) * time.Minute)
	}

	for i := 0; i < newsCount; i++ {
		s.AddNews(lorem.Sentence(3, 8), day(i))
	}
	for i := 0; i < announcementCount; i++ {
		s.AddAnnouncement(lorem.Sentence(3, 10), 1+rand.Intn(len(s.types)), day(i))
	}
	for i := 0; i < knowledgeCount; i++ {
		s.AddKnowledge(lorem.Sentence(2, 6), day(i))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for page, blocks := range s.contents {
		for i := range blocks {
			if blocks[i].Body == "" {
				blocks[i].Body = "<p>" + lorem.Paragraph(2, 4) + "</p>"
			}
		}
		s.contents[page] = blocks
	}
}
