// Command vidctl searches the gateway and keeps a device-local saved list.
//
// The local list is the unauthenticated scope and never syncs with an account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/client"
	"github.com/bjjvault/video-gateway/internal/config"
	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/internal/service"
	"github.com/bjjvault/video-gateway/internal/store"
	"github.com/bjjvault/video-gateway/internal/validation"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

const usage = `Usage: vidctl [global flags] <command> [flags] [args]

Commands:
  search [-provider p] [-save n] <query>   search videos, optionally saving result n
  transcript [-provider p] [-attach] <videoId>
                                           show transcription info, optionally
                                           attaching it to the saved video
  save [-provider p] [-title t] <videoId>  save a video locally
  remove [-provider p] <videoId>           remove a locally saved video
  exists [-provider p] <videoId>           check whether a video is saved
  list                                     list locally saved videos

Global flags:
`

type app struct {
	gateway *client.Client
	library *service.SavedVideoService
	stdout  io.Writer
}

func main() {
	logger.InitNop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	defaults := loadDefaults()

	global := flag.NewFlagSet("vidctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	serverURL := global.String("server", defaults.serverURL, "gateway base URL")
	apiKey := global.String("api-key", defaults.apiKey, "gateway API key")
	dataDir := global.String("data", defaults.dataDir, "directory for the local saved list")
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}

	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	st, err := store.NewFileStore(*dataDir)
	if err != nil {
		fmt.Fprintf(stderr, "vidctl: %v\n", err)
		return 1
	}

	a := &app{
		gateway: client.New(*serverURL, *apiKey, nil),
		library: service.NewSavedVideoService(st, validation.New(0), nil, nil),
		stdout:  stdout,
	}

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "search":
		err = a.search(ctx, cmdArgs, stderr)
	case "transcript":
		err = a.transcript(ctx, cmdArgs, stderr)
	case "save":
		err = a.save(ctx, cmdArgs, stderr)
	case "remove":
		err = a.remove(ctx, cmdArgs, stderr)
	case "exists":
		err = a.exists(ctx, cmdArgs, stderr)
	case "list":
		err = a.list(ctx)
	default:
		fmt.Fprintf(stderr, "vidctl: unknown command %q\n", cmd)
		global.Usage()
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintf(stderr, "vidctl: %s\n", describe(err))
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

type defaultSettings struct {
	serverURL string
	apiKey    string
	dataDir   string
}

// loadDefaults reads the shared configuration when available.
func loadDefaults() defaultSettings {
	d := defaultSettings{serverURL: "http://localhost:3001"}

	if cfg, err := config.Load(); err == nil {
		d.serverURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		if len(cfg.Auth.APIKeys) > 0 {
			d.apiKey = cfg.Auth.APIKeys[0]
		}
		d.dataDir = cfg.Storage.LocalDir
	}
	if env := os.Getenv("VIDCTL_SERVER"); env != "" {
		d.serverURL = env
	}
	if d.dataDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			d.dataDir = filepath.Join(dir, "video-gateway")
		} else {
			d.dataDir = ".video-gateway"
		}
	}
	return d
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	provider := fs.String("provider", string(models.ProviderYouTube), "video provider (youtube, vimeo, bilibili)")
	return fs, provider
}

func (a *app) search(ctx context.Context, args []string, stderr io.Writer) error {
	fs, provider := newFlagSet("search", stderr)
	saveIndex := fs.Int("save", 0, "save result number n (1-based) to the local list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(stderr, "vidctl search: a query is required")
		return errUsage
	}

	videos, err := a.gateway.Search(ctx, query, models.ProviderID(*provider))
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Fprintln(a.stdout, "No videos found.")
		return nil
	}
	printVideos(a.stdout, videos)

	if *saveIndex == 0 {
		return nil
	}
	if *saveIndex < 0 || *saveIndex > len(videos) {
		return fmt.Errorf("-save %d is out of range (1-%d)", *saveIndex, len(videos))
	}
	saved, err := a.library.Save(ctx, store.LocalOwner(), videos[*saveIndex-1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Saved %q.\n", saved.Title)
	return nil
}

func (a *app) transcript(ctx context.Context, args []string, stderr io.Writer) error {
	fs, provider := newFlagSet("transcript", stderr)
	attach := fs.Bool("attach", false, "store the transcription on the locally saved video")
	if err := fs.Parse(args); err != nil {
		return err
	}
	videoID, err := singleArg(fs, stderr)
	if err != nil {
		return err
	}

	result, err := a.gateway.Transcription(ctx, models.ProviderID(*provider), videoID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, result.Text)
	for _, track := range result.Tracks {
		fmt.Fprintf(a.stdout, "  %s\t%s\t%s\t%s\n", track.ID, track.Language, track.Name, track.TrackKind)
	}
	if result.Degraded {
		return errors.New("transcription lookup failed; showing placeholder text")
	}
	if !*attach {
		return nil
	}

	key := models.Key{ID: videoID, Provider: models.ProviderID(*provider)}
	saved, err := a.library.Get(ctx, store.LocalOwner(), key)
	if err != nil {
		return err
	}
	saved.Transcription = result.Text
	saved.CaptionTracks = result.Tracks
	if _, err := a.library.Update(ctx, store.LocalOwner(), saved); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Attached transcription to %s.\n", videoID)
	return nil
}

func (a *app) save(ctx context.Context, args []string, stderr io.Writer) error {
	fs, provider := newFlagSet("save", stderr)
	title := fs.String("title", "", "title to store with the video")
	if err := fs.Parse(args); err != nil {
		return err
	}
	videoID, err := singleArg(fs, stderr)
	if err != nil {
		return err
	}

	saved, err := a.library.Save(ctx, store.LocalOwner(), models.VideoSummary{
		ID:       videoID,
		Provider: models.ProviderID(*provider),
		Title:    *title,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Saved %s (%s).\n", saved.ID, saved.Link)
	return nil
}

func (a *app) remove(ctx context.Context, args []string, stderr io.Writer) error {
	fs, provider := newFlagSet("remove", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	videoID, err := singleArg(fs, stderr)
	if err != nil {
		return err
	}

	key := models.Key{ID: videoID, Provider: models.ProviderID(*provider)}
	if err := a.library.Remove(ctx, store.LocalOwner(), key); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Removed %s.\n", videoID)
	return nil
}

func (a *app) exists(ctx context.Context, args []string, stderr io.Writer) error {
	fs, provider := newFlagSet("exists", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	videoID, err := singleArg(fs, stderr)
	if err != nil {
		return err
	}

	ok, err := a.library.Exists(ctx, store.LocalOwner(), models.Key{ID: videoID, Provider: models.ProviderID(*provider)})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, ok)
	return nil
}

func (a *app) list(ctx context.Context) error {
	videos, err := a.library.List(ctx, store.LocalOwner())
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Fprintln(a.stdout, "No saved videos.")
		return nil
	}
	printVideos(a.stdout, videos)
	return nil
}

func singleArg(fs *flag.FlagSet, stderr io.Writer) (string, error) {
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "vidctl %s: expected exactly one video id\n", fs.Name())
		return "", errUsage
	}
	return fs.Arg(0), nil
}

func printVideos(w io.Writer, videos []models.VideoSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPROVIDER\tTITLE\tCHANNEL\tVIEWS\tLINK")
	for i, v := range videos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, v.Provider, v.Title, v.ChannelTitle, v.ViewCount, v.Link)
	}
	_ = tw.Flush()
}

// describe prefers the caller-facing message of classified errors.
func describe(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return apperr.PublicMessage(err)
	}
	return err.Error()
}
