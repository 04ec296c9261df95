package blame

import (
	"context"
	"fmt"
	"net/rpc"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/scan-io-git/scanio-analysis/internal/git"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

// PluginName is the name the blamer is dispensed under.
const PluginName = "blamer"

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "SCANIO_ANALYSIS",
	MagicCookieValue: "4c1f0b7e6d8a4a52b2f1a0c9e3d7b6a5f8e2c1d0",
}

var PluginMap = map[string]plugin.Plugin{
	PluginName: &BlamerPlugin{},
}

// RemoteBlamer answers blame requests in another process, usually on the
// machine that holds the repository.
type RemoteBlamer interface {
	BlameFiles(req BlameFilesRequest) (*Blames, error)
}

// BlameFilesRequest carries the requests to answer.
type BlameFilesRequest struct {
	Workspace string
	Revision  string
	Blames    *Blames
}

type BlamerRPCClient struct{ client *rpc.Client }

func (g *BlamerRPCClient) BlameFiles(req BlameFilesRequest) (*Blames, error) {
	var resp Blames
	if err := g.client.Call("Plugin.BlameFiles", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type BlamerRPCServer struct {
	Impl RemoteBlamer
}

func (s *BlamerRPCServer) BlameFiles(args BlameFilesRequest, resp *Blames) error {
	blames, err := s.Impl.BlameFiles(args)
	if err != nil {
		return err
	}
	*resp = *blames
	return nil
}

type BlamerPlugin struct {
	Impl RemoteBlamer
}

func (p *BlamerPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &BlamerRPCServer{Impl: p.Impl}, nil
}

func (BlamerPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &BlamerRPCClient{client: c}, nil
}

// GitRemoteBlamer is the plugin side implementation backed by go-git.
type GitRemoteBlamer struct{}

// BlameFiles answers the requests of req. Repository problems are logged to
// the returned blames.
func (GitRemoteBlamer) BlameFiles(req BlameFilesRequest) (*Blames, error) {
	blames := req.Blames
	if blames == nil {
		blames = NewBlames(req.Workspace)
	}
	repo, err := git.Open(req.Workspace)
	if err != nil {
		blames.LogError("Can't open a Git repository for workspace '%s', skipping blame: %v", req.Workspace, err)
		return blames, nil
	}
	commit, err := repo.ResolveCommit(req.Revision)
	if err != nil {
		blames.LogError("Could not retrieve HEAD commit, aborting")
		blames.LogError("%v", err)
		return blames, nil
	}
	if err := blameRequests(context.Background(), repo, commit, blames); err != nil {
		return nil, err
	}
	return blames, nil
}

// ServeGitBlamer serves GitRemoteBlamer as a plugin. It blocks until the host
// process ends the plugin.
func ServeGitBlamer(logger hclog.Logger) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			PluginName: &BlamerPlugin{Impl: &GitRemoteBlamer{}},
		},
		Logger: logger,
	})
}

// connectFunc starts a plugin and returns the dispensed blamer together with
// a function that stops the plugin.
type connectFunc func() (RemoteBlamer, func(), error)

// PluginBlamer delegates blame computation to a plugin process.
type PluginBlamer struct {
	opts    Options
	logger  hclog.Logger
	connect connectFunc
}

// NewPluginBlamer creates a blamer launching the plugin binary at opts.PluginPath.
func NewPluginBlamer(opts Options, logger hclog.Logger) *PluginBlamer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	p := &PluginBlamer{opts: opts, logger: logger}
	p.connect = p.launch
	return p
}

func (p *PluginBlamer) launch() (RemoteBlamer, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  HandshakeConfig,
		Plugins:          PluginMap,
		Cmd:              exec.Command(p.opts.PluginPath),
		Logger:           p.logger,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to start plugin %q: %w", p.opts.PluginPath, err)
	}

	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("%w: %v", ErrPluginDispense, err)
	}
	remote, ok := raw.(RemoteBlamer)
	if !ok {
		client.Kill()
		return nil, nil, ErrUnexpectedPlugin
	}
	return remote, client.Kill, nil
}

// Blame builds the requests locally and lets the plugin answer them.
func (p *PluginBlamer) Blame(ctx context.Context, report *issues.Report) (*Blames, error) {
	blames := BuildIndex(report, p.opts.Workspace)
	blames.LogInfo("Invoking blamer plugin '%s' to create author and commit information", p.opts.PluginPath)
	if blames.IsEmpty() {
		return blames, nil
	}
	if err := ctx.Err(); err != nil {
		return blames, err
	}

	remote, stop, err := p.connect()
	if err != nil {
		p.logger.Error("blamer plugin is not available", "error", err)
		blames.LogError("Blamer plugin is not available, skipping blame: %v", err)
		return blames, nil
	}
	defer stop()

	type result struct {
		blames *Blames
		err    error
	}
	done := make(chan result, 1)
	go func() {
		out, err := remote.BlameFiles(BlameFilesRequest{
			Workspace: p.opts.Workspace,
			Revision:  p.opts.Revision,
			Blames:    blames,
		})
		done <- result{blames: out, err: err}
	}()

	select {
	case <-ctx.Done():
		blames.LogInfo("Blame was canceled while computing blame information")
		return blames, ctx.Err()
	case res := <-done:
		if res.err != nil {
			blames.LogError("Blamer plugin failed: %v", res.err)
			return blames, nil
		}
		return res.blames, nil
	}
}
