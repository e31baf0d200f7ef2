package git

import "context"

// Compile-time check that MockRepository implements Repository.
var _ Repository = (*MockRepository)(nil)

// MockRepository is a configurable mock implementation of Repository for testing.
// Each method is backed by a function field. If the function field is nil,
// the method returns sensible zero values.
type MockRepository struct {
	WorkingDirectoryFunc   func() string
	HeadFunc               func() (Branch, error)
	TagsFunc               func() ([]Tag, error)
	PeelTagToCommitFunc    func(Tag) (string, error)
	CommitLogFunc          func(string, string) ([]Commit, error)
	ChangedPathsFunc       func(string, string) ([]string, error)
	FileDiffFunc           func(string, string, string) (FileDiff, error)
	CreateAnnotatedTagFunc func(string, string, string) (Tag, error)
	PushTagFunc            func(context.Context, string, string, string) error
}

func (m *MockRepository) WorkingDirectory() string {
	if m.WorkingDirectoryFunc != nil {
		return m.WorkingDirectoryFunc()
	}
	return ""
}

func (m *MockRepository) Head() (Branch, error) {
	if m.HeadFunc != nil {
		return m.HeadFunc()
	}
	return Branch{}, nil
}

func (m *MockRepository) Tags() ([]Tag, error) {
	if m.TagsFunc != nil {
		return m.TagsFunc()
	}
	return nil, nil
}

func (m *MockRepository) PeelTagToCommit(tag Tag) (string, error) {
	if m.PeelTagToCommitFunc != nil {
		return m.PeelTagToCommitFunc(tag)
	}
	return tag.TargetSha, nil
}

func (m *MockRepository) CommitLog(from, to string) ([]Commit, error) {
	if m.CommitLogFunc != nil {
		return m.CommitLogFunc(from, to)
	}
	return nil, nil
}

func (m *MockRepository) ChangedPaths(from, to string) ([]string, error) {
	if m.ChangedPathsFunc != nil {
		return m.ChangedPathsFunc(from, to)
	}
	return nil, nil
}

func (m *MockRepository) FileDiff(from, to, path string) (FileDiff, error) {
	if m.FileDiffFunc != nil {
		return m.FileDiffFunc(from, to, path)
	}
	return FileDiff{Path: path}, nil
}

func (m *MockRepository) CreateAnnotatedTag(name, sha, message string) (Tag, error) {
	if m.CreateAnnotatedTagFunc != nil {
		return m.CreateAnnotatedTagFunc(name, sha, message)
	}
	return Tag{Name: NewTagReferenceName(name), TargetSha: sha}, nil
}

func (m *MockRepository) PushTag(ctx context.Context, remote, name, token string) error {
	if m.PushTagFunc != nil {
		return m.PushTagFunc(ctx, remote, name, token)
	}
	return nil
}
