package domain

import (
	"slices"
	"time"
)

// UserState is everything the bot keeps for one user.
// It is only mutated inside UserStore.Update, which serializes access per user.
type UserState struct {
	Tasks      []Task         `json:"tasks"`
	Favorites  []FavoriteTask `json:"favorites"`
	Dialogue   Dialogue       `json:"dialogue"`
	LastTaskID int64          `json:"lastTaskId"`
}

// Clone returns a deep copy of the state.
func (s *UserState) Clone() UserState {
	return UserState{
		Tasks:      slices.Clone(s.Tasks),
		Favorites:  slices.Clone(s.Favorites),
		Dialogue:   s.Dialogue,
		LastTaskID: s.LastTaskID,
	}
}

// CreateTask appends a new task. Its id is derived from the clock but always
// exceeds every id handed out before for this user.
func (s *UserState) CreateTask(text string, now time.Time) Task {
	id := now.UnixMilli()
	if id <= s.LastTaskID {
		id = s.LastTaskID + 1
	}
	s.LastTaskID = id

	task := Task{
		ID:        id,
		Text:      text,
		CreatedAt: now,
	}
	s.Tasks = append(s.Tasks, task)
	return task
}

// FindTask returns the index of the task with the given id, or -1.
func (s *UserState) FindTask(id int64) int {
	return slices.IndexFunc(s.Tasks, func(t Task) bool { return t.ID == id })
}

// CompleteTask marks a task completed. ok is false when the task is absent,
// in which case nothing changes.
func (s *UserState) CompleteTask(id int64) (Task, bool) {
	i := s.FindTask(id)
	if i < 0 {
		return Task{}, false
	}
	s.Tasks[i].Completed = true
	return s.Tasks[i], true
}

// FavoriteTask saves a task as a favorite template and starts the tag dialogue.
// created is false when the task is absent or already favorited; the state is
// then left untouched.
func (s *UserState) FavoriteTask(id int64, favoriteID string, now time.Time) (fav FavoriteTask, created bool) {
	i := s.FindTask(id)
	if i < 0 || s.Tasks[i].Favorited {
		return FavoriteTask{}, false
	}
	s.Tasks[i].Favorited = true

	fav = FavoriteTask{
		ID:           favoriteID,
		Name:         s.Tasks[i].Text,
		Category:     TagOf(s.Tasks[i].Text),
		CreatedAt:    now,
		SourceTaskID: id,
	}
	s.Favorites = append(s.Favorites, fav)
	s.Dialogue.Await(id, now)
	return fav, true
}

// ApplyTag prefixes the task text with the tag label and renames the linked
// favorite to match. The dialogue is cleared whether or not the task exists.
func (s *UserState) ApplyTag(id int64, label string) (Task, *FavoriteTask, error) {
	s.Dialogue.Reset()

	i := s.FindTask(id)
	if i < 0 {
		return Task{}, nil, ErrTaskNotFound
	}
	s.Tasks[i].Text = TaggedText(label, s.Tasks[i].Text)

	var renamed *FavoriteTask
	if s.Tasks[i].Favorited {
		if j := s.findFavoriteBySource(id); j >= 0 {
			s.Favorites[j].Name = s.Tasks[i].Text
			s.Favorites[j].Category = label
			fav := s.Favorites[j]
			renamed = &fav
		}
	}
	return s.Tasks[i], renamed, nil
}

// ReplaceAll overwrites the task list with a snapshot. Favorites and the
// dialogue are kept; the id counter never moves backwards.
func (s *UserState) ReplaceAll(tasks []Task) {
	s.Tasks = slices.Clone(tasks)
	for _, t := range tasks {
		if t.ID > s.LastTaskID {
			s.LastTaskID = t.ID
		}
	}
}

// RemoveFavorite deletes a favorite template.
func (s *UserState) RemoveFavorite(favoriteID string) (FavoriteTask, error) {
	j := slices.IndexFunc(s.Favorites, func(f FavoriteTask) bool { return f.ID == favoriteID })
	if j < 0 {
		return FavoriteTask{}, ErrFavoriteNotFound
	}
	fav := s.Favorites[j]
	s.Favorites = slices.Delete(s.Favorites, j, j+1)
	return fav, nil
}

func (s *UserState) findFavoriteBySource(taskID int64) int {
	// Newest first: a task re-favorited after a sync links to its latest template.
	for j := len(s.Favorites) - 1; j >= 0; j-- {
		if s.Favorites[j].SourceTaskID == taskID {
			return j
		}
	}
	return -1
}
