package reload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winspan/listsync/internal/executil"
)

func TestDirectReload(t *testing.T) {
	m := &executil.Mock{}
	r := NewCommand(m, nil)

	require.NoError(t, r.Reload(context.Background()))
	assert.Equal(t, []string{"pihole restartdns reload"}, m.Commands())
	assert.Equal(t, "pihole restartdns reload", r.String())
}

func TestDockerReload(t *testing.T) {
	m := &executil.Mock{}
	r := NewDocker(m, "", nil)

	require.NoError(t, r.Reload(context.Background()))
	assert.Equal(t, []string{"docker exec -i pihole pihole restartdns reload"}, m.Commands())

	custom := NewDocker(m, "dns", []string{"pihole", "-g"})
	assert.Equal(t, []string{"docker", "exec", "-i", "dns", "pihole", "-g"}, custom.Argv())
}

func TestReloadPropagatesError(t *testing.T) {
	cause := errors.New("exit status 1")
	m := &executil.Mock{}
	m.Expect("pihole restartdns reload", executil.MockResult{Err: cause})
	m.Expect("docker exec -i pihole pihole restartdns reload", executil.MockResult{Err: cause})

	err := NewCommand(m, nil).Reload(context.Background())
	assert.EqualError(t, err, "pihole restartdns reload: exit status 1")

	err = NewDocker(m, "", nil).Reload(context.Background())
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "docker exec -i pihole pihole restartdns reload: exit status 1")
}

func TestArgvIsCopied(t *testing.T) {
	argv := []string{"systemctl", "reload", "pihole-FTL"}
	r := NewCommand(&executil.Mock{}, argv)
	argv[0] = "rm"

	assert.Equal(t, "systemctl", r.Argv()[0])
	r.Argv()[0] = "rm"
	assert.Equal(t, "systemctl", r.Argv()[0])
}

func TestFunc(t *testing.T) {
	called := false
	var r Reloader = Func(func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, r.Reload(context.Background()))
	assert.True(t, called)
}
