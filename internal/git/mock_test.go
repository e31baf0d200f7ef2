package git

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockRepository_NilFuncsReturnDefaults(t *testing.T) {
	m := &MockRepository{}

	require.Equal(t, "", m.WorkingDirectory())

	head, err := m.Head()
	require.NoError(t, err)
	require.Equal(t, Branch{}, head)

	tags, err := m.Tags()
	require.NoError(t, err)
	require.Nil(t, tags)

	sha, err := m.PeelTagToCommit(Tag{TargetSha: "abc"})
	require.NoError(t, err)
	require.Equal(t, "abc", sha)

	log, err := m.CommitLog("a", "b")
	require.NoError(t, err)
	require.Nil(t, log)

	paths, err := m.ChangedPaths("a", "b")
	require.NoError(t, err)
	require.Nil(t, paths)

	d, err := m.FileDiff("a", "b", "package.json")
	require.NoError(t, err)
	require.Equal(t, FileDiff{Path: "package.json"}, d)

	tag, err := m.CreateAnnotatedTag("v1.0.0", "abc", "msg")
	require.NoError(t, err)
	require.Equal(t, "v1.0.0", tag.Name.Friendly)

	require.NoError(t, m.PushTag(context.Background(), "origin", "v1.0.0", ""))
}

func TestMockRepository_FuncsAreCalled(t *testing.T) {
	errBoom := errors.New("boom")
	m := &MockRepository{
		WorkingDirectoryFunc: func() string { return "/work" },
		TagsFunc:             func() ([]Tag, error) { return nil, errBoom },
		PeelTagToCommitFunc:  func(Tag) (string, error) { return "", errBoom },
	}

	require.Equal(t, "/work", m.WorkingDirectory())

	_, err := m.Tags()
	require.ErrorIs(t, err, errBoom)

	_, err = m.PeelTagToCommit(Tag{})
	require.ErrorIs(t, err, errBoom)
}
