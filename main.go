// Package main provides the entry point for the vocalize CLI.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/vocalize/tts"
	"github.com/dgnsrekt/vocalize/tts/audio"
	"github.com/dgnsrekt/vocalize/tts/pipeline"
	"github.com/dgnsrekt/vocalize/tts/render"
	"github.com/dgnsrekt/vocalize/tts/voices"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile          string
	voiceFlag           string
	speakerFlag         string
	ssmlFlag            bool
	interactiveFlag     bool
	listVoicesFlag      bool
	downloadFlag        bool
	outputDirFlag       string
	outputNamingFlag    string
	markFileFlag        string
	noiseScaleFlag      float64
	noiseWFlag          float64
	lengthScaleFlag     float64
	deterministicFlag   bool
	failFastFlag        bool
	rendererFlag        string
	voicesDirFlag       []string
	processOnBlankLine  bool

	rootCmd = &cobra.Command{
		Use:   "vocalize [TEXT|FILE]",
		Short: "Turn text and SSML into speech on the CLI",
		Long: "\nSynthesize speech from plain text or SSML documents using\n" +
			"locally installed voices.",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		RunE:             execute,
	}
)

func loadConfig(cmd *cobra.Command) (tts.Config, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return cfg, err
	}

	// Environment variables override the config file.
	envCfg, err := env.ParseAs[tts.Config]()
	if err == nil {
		if os.Getenv("VOCALIZE_VOICE") != "" {
			cfg.Voice = envCfg.Voice
		}
		if envCfg.Speaker != "" {
			cfg.Speaker = envCfg.Speaker
		}
		if len(envCfg.VoiceDirs) > 0 {
			cfg.VoiceDirs = envCfg.VoiceDirs
		}
	}

	// CLI flags win over everything.
	if cmd.Flags().Changed("voice") {
		cfg.Voice = voiceFlag
	}
	if cmd.Flags().Changed("speaker") {
		cfg.Speaker = speakerFlag
	}
	if cmd.Flags().Changed("renderer") {
		cfg.Renderer = rendererFlag
	}
	if cmd.Flags().Changed("voices-dir") {
		cfg.VoiceDirs = voicesDirFlag
	}
	if cmd.Flags().Changed("noise-scale") {
		cfg.NoiseScale = noiseScaleFlag
	}
	if cmd.Flags().Changed("noise-w") {
		cfg.NoiseW = noiseWFlag
	}
	if cmd.Flags().Changed("length-scale") {
		cfg.LengthScale = lengthScaleFlag
	}
	if cmd.Flags().Changed("deterministic") {
		cfg.Deterministic = deterministicFlag
	}
	if cmd.Flags().Changed("fail-fast") {
		cfg.FailFast = failFastFlag
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = outputDirFlag
	}
	if cmd.Flags().Changed("output-naming") {
		cfg.OutputNaming = outputNamingFlag
	}
	if cmd.Flags().Changed("mark-file") {
		cfg.MarkFile = markFileFlag
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func buildSynthesizer(cfg tts.Config) (*pipeline.Synthesizer, tts.Registry, error) {
	registry, err := voices.New(cfg.VoiceDirs...)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to scan voices: %w", err)
	}

	var renderer tts.Renderer
	switch cfg.Renderer {
	case "mock":
		renderer = render.NewMock()
	default:
		renderer, err = render.NewProcess(render.ProcessConfig{
			BinaryPath:     cfg.BinaryPath,
			RequestTimeout: cfg.RenderTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	synth := pipeline.NewSynthesizer(registry, renderer, pipeline.Config{
		DefaultVoice:  cfg.VoiceKey(),
		NoiseScale:    cfg.NoiseScale,
		NoiseW:        cfg.NoiseW,
		LengthScale:   cfg.LengthScale,
		Deterministic: cfg.Deterministic,
		FailFast:      cfg.FailFast,
	})
	return synth, registry, nil
}

// inputFromArgs resolves the synthesis input: a file path argument,
// literal text arguments, or stdin.
func inputFromArgs(args []string) (string, error) {
	if len(args) == 1 {
		if args[0] == "-" {
			b, err := io.ReadAll(os.Stdin)
			return string(b), err
		}
		if st, err := os.Stat(args[0]); err == nil && !st.IsDir() {
			b, err := os.ReadFile(args[0])
			return string(b), err
		}
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if yes, _ := stdinIsPipe(); yes {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	return "", errors.New("no input: pass text, a file, or pipe to stdin")
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if listVoicesFlag {
		return listVoices(cfg)
	}

	synth, registry, err := buildSynthesizer(cfg)
	if err != nil {
		return err
	}

	if downloadFlag {
		path, err := registry.EnsureLocal(cfg.VoiceKey())
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interactiveFlag {
		return runInteractive(ctx, synth, cfg)
	}

	input, err := inputFromArgs(args)
	if err != nil {
		return err
	}
	return runBatch(ctx, synth, cfg, input)
}

func listVoices(cfg tts.Config) error {
	registry, err := voices.New(cfg.VoiceDirs...)
	if err != nil {
		return err
	}
	for _, v := range registry.Voices() {
		speakers := ""
		if v.Multispeaker() {
			speakers = fmt.Sprintf(" (%d speakers)", len(v.Speakers))
		}
		fmt.Printf("%s\t%s%s\n", v.Key, v.Phonemizer, speakers)
	}
	return nil
}

func runBatch(ctx context.Context, synth *pipeline.Synthesizer, cfg tts.Config, input string) error {
	result, err := synth.Synthesize(ctx, input, ssmlFlag)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		log.Warn("degraded synthesis", "warning", w.String())
	}

	if cfg.MarkFile != "" {
		if err := writeMarkFile(cfg.MarkFile, result); err != nil {
			return err
		}
	}

	if cfg.OutputDir != "" {
		naming, err := audio.ParseNaming(cfg.OutputNaming)
		if err != nil {
			return err
		}
		writer := &audio.DirWriter{Dir: cfg.OutputDir, Naming: naming}
		for _, res := range result.Results {
			if _, err := writer.Write(res.Samples, res.SampleRate, res.SourceText); err != nil {
				return err
			}
		}
		return nil
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return writeConcatenated(os.Stdout, result)
	}
	return playResults(result)
}

func writeConcatenated(w io.Writer, result *tts.SynthesisResult) error {
	sampleRate := tts.DefaultSampleRate
	if len(result.Results) > 0 {
		sampleRate = result.Results[0].SampleRate
	}
	out := audio.NewStreamWriter(w, sampleRate)
	for _, res := range result.Results {
		out.Write(res.Samples)
	}
	return out.Close()
}

func playResults(result *tts.SynthesisResult) error {
	if len(result.Results) == 0 {
		return nil
	}
	player, err := audio.NewPlayer(result.Results[0].SampleRate)
	if err != nil {
		return err
	}
	defer player.Close() //nolint:errcheck

	for _, res := range result.Results {
		for _, mark := range res.Marks {
			log.Info("mark", "name", mark)
		}
		if err := player.Play(res.Samples); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkFile(path string, result *tts.SynthesisResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	var marks []string
	for _, res := range result.Results {
		marks = append(marks, res.Marks...)
	}
	marks = append(marks, result.TrailingMarks...)
	if err := audio.WriteMarks(f, marks); err != nil {
		return err
	}
	return f.Close()
}

// runInteractive reads stdin line by line, synthesizes each chunk
// with bounded readahead and plays it as it becomes ready.
func runInteractive(ctx context.Context, synth *pipeline.Synthesizer, cfg tts.Config) error {
	var player *audio.Player

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var block []string
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		input := strings.Join(block, "\n")
		block = block[:0]
		return streamChunk(ctx, synth, cfg, input, &player)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if processOnBlankLine {
			if strings.TrimSpace(line) == "" {
				if err := flush(); err != nil {
					return err
				}
				continue
			}
			block = append(block, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := streamChunk(ctx, synth, cfg, line, &player); err != nil {
			return err
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	if player != nil {
		return player.Close()
	}
	return nil
}

func streamChunk(ctx context.Context, synth *pipeline.Synthesizer, cfg tts.Config, input string, player **audio.Player) error {
	for item := range synth.Stream(ctx, input, ssmlFlag) {
		if item.Err != nil {
			if tts.IsRecoverable(item.Err) {
				log.Warn("skipping unit", "error", item.Err)
				continue
			}
			return item.Err
		}
		res := item.Result
		for _, mark := range res.Marks {
			log.Info("mark", "name", mark)
		}
		if len(res.Samples) == 0 {
			continue
		}
		if *player == nil {
			p, err := audio.NewPlayer(res.SampleRate)
			if err != nil {
				return err
			}
			*player = p
		}
		if err := (*player).Play(res.Samples); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)

	if lvl := os.Getenv("VOCALIZE_LOG_LEVEL"); lvl != "" {
		if level, err := log.ParseLevel(lvl); err == nil {
			log.SetLevel(level)
		}
	}

	if path := os.Getenv("VOCALIZE_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		log.SetOutput(f)
		log.SetReportTimestamp(true)
		return f.Close, nil
	}
	return func() error { return nil }, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&voiceFlag, "voice", "v", "", "voice key, language/name_quality[#speaker]")
	rootCmd.Flags().StringVar(&speakerFlag, "speaker", "", "speaker name or zero-based index")
	rootCmd.Flags().BoolVar(&ssmlFlag, "ssml", false, "treat input as SSML markup")
	rootCmd.Flags().BoolVarP(&interactiveFlag, "interactive", "i", false, "read lines from stdin and play as they synthesize")
	rootCmd.Flags().BoolVar(&listVoicesFlag, "voices", false, "list installed voices and exit")
	rootCmd.Flags().BoolVar(&downloadFlag, "ensure-local", false, "unpack the selected voice's model if needed and exit")
	rootCmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "", "write one WAV file per unit to this directory")
	rootCmd.Flags().StringVar(&outputNamingFlag, "output-naming", "text", "output file naming: text, time or id")
	rootCmd.Flags().StringVar(&markFileFlag, "mark-file", "", "write reached SSML mark names to this file")
	rootCmd.Flags().Float64Var(&noiseScaleFlag, "noise-scale", 0, "override the voice's noise scale")
	rootCmd.Flags().Float64Var(&noiseWFlag, "noise-w", 0, "override the voice's noise width")
	rootCmd.Flags().Float64Var(&lengthScaleFlag, "length-scale", 0, "override the voice's length scale")
	rootCmd.Flags().BoolVar(&deterministicFlag, "deterministic", false, "zero the noise parameters for repeatable output")
	rootCmd.Flags().BoolVar(&failFastFlag, "fail-fast", false, "abort on the first failed unit instead of skipping it")
	rootCmd.Flags().StringVar(&rendererFlag, "renderer", "", "renderer backend: process or mock")
	rootCmd.Flags().StringSliceVar(&voicesDirFlag, "voices-dir", nil, "extra voice directories to scan")
	rootCmd.Flags().BoolVar(&processOnBlankLine, "process-on-blank-line", false, "in interactive mode, synthesize on blank lines instead of per line")

	_ = viper.BindPFlag("tts.voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("tts.speaker", rootCmd.Flags().Lookup("speaker"))
	_ = viper.BindPFlag("tts.renderer", rootCmd.Flags().Lookup("renderer"))
	_ = viper.BindPFlag("tts.output_naming", rootCmd.Flags().Lookup("output-naming"))

	tts.SetDefaults()

	rootCmd.AddCommand(configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "vocalize")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "vocalize")}, dirs...)
	}

	if c := os.Getenv("VOCALIZE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("vocalize")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("vocalize")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "vocalize.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
