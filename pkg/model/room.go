package model

type Room struct {
	ID       string `gorm:"primaryKey" yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Floor    int    `yaml:"floor" json:"floor"`
	Capacity int    `yaml:"capacity" json:"capacity"`
}

func (r *Room) Key() string {
	return r.ID
}
