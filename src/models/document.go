package models

// News, announcements and knowledge articles are all a titled PDF stored by
// the backend under /storage.

type News struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	FilePath  string    `json:"file_path"`
	CreatedAt Timestamp `json:"created_at"`
}

type AnnouncementType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Announcement struct {
	ID        int              `json:"id"`
	Title     string           `json:"title"`
	TypeID    int              `json:"type_id"`
	Type      AnnouncementType `json:"type"`
	FilePath  string           `json:"file_path"`
	CreatedAt Timestamp        `json:"created_at"`
}

type Knowledge struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	FilePath  string    `json:"file_path"`
	CreatedAt Timestamp `json:"created_at"`
}

func (n News) ItemID() int         { return n.ID }
func (a Announcement) ItemID() int { return a.ID }
func (k Knowledge) ItemID() int    { return k.ID }
