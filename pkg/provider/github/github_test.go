package github

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_splitFullName(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		owner   string
		repo    string
		wantErr bool
	}

	cases := []testCase{
		{name: "valid", input: "acme/widgets", owner: "acme", repo: "widgets"},
		{name: "missing slash", input: "acmewidgets", wantErr: true},
		{name: "empty owner", input: "/widgets", wantErr: true},
		{name: "empty repo", input: "acme/", wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			owner, repo, err := splitFullName(c.input)
			if c.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.owner, owner)
			require.Equal(t, c.repo, repo)
		})
	}
}

func Test_newTransport_validatesArgs(t *testing.T) {
	_, err := newTransport(0, 1, []byte("key"))
	require.Error(t, err)

	_, err = newTransport(1, 0, []byte("key"))
	require.Error(t, err)

	_, err = newTransport(1, 1, nil)
	require.Error(t, err)
}
