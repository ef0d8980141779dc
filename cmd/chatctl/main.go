// chatctl is a small terminal front end for the chatgpt package: an
// interactive chat loop, model listing, and image generation.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lgc202/chatgpt-kit/chatgpt"
	"github.com/lgc202/chatgpt-kit/kitconfig"
	"github.com/lgc202/chatgpt-kit/version"
)

var (
	flagConfig string
	flagKey    string
	flagModel  string
	flagSystem string
	flagNoStream bool
	flagSession  string
	flagSize     string
	flagOutput   string
)

func main() {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		chatgpt.SetDefaultAPIKey(key)
	}

	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Chat with an OpenAI-compatible completions service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "settings file (yaml/json/toml)")
	root.PersistentFlags().StringVar(&flagKey, "key", "", "API key (overrides config and OPENAI_API_KEY)")

	root.AddCommand(chatCmd(), modelsCmd(), imageCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newConversation() (*chatgpt.Conversation, error) {
	var opts []chatgpt.Option
	var settings *kitconfig.Settings
	if flagConfig != "" {
		cfg, err := kitconfig.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		s := cfg.Get()
		settings = &s
		opts = append(opts, s.Options()...)
	}
	if flagKey != "" {
		opts = append(opts, chatgpt.WithAPIKey(flagKey))
	}
	if flagModel != "" {
		opts = append(opts, chatgpt.WithModel(flagModel))
	}

	conv, err := chatgpt.New(opts...)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		if err := settings.Apply(conv); err != nil {
			return nil, err
		}
	}
	if flagNoStream {
		conv.SetStreaming(false)
	}
	return conv, nil
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat loop (blank line or /quit to exit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := newConversation()
			if err != nil {
				return err
			}
			if flagSystem != "" {
				_ = conv.AddSystem(flagSystem)
			}
			if flagSession != "" {
				if _, err := os.Stat(flagSession); err == nil {
					if err := conv.Load(flagSession); err != nil {
						return err
					}
				}
			}

			in := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !in.Scan() {
					break
				}
				line := strings.TrimSpace(in.Text())
				if line == "" || line == "/quit" {
					break
				}

				_ = conv.AddUser(line)
				reply, err := conv.Send(cmd.Context(), func(delta string) {
					fmt.Print(delta)
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
					continue
				}
				if !conv.Streaming() {
					fmt.Print(reply)
				}
				fmt.Println()
				_ = conv.AddAssistant(reply)

				if flagSession != "" {
					if err := conv.Save(flagSession); err != nil {
						fmt.Fprintf(os.Stderr, "warning: %v\n", err)
					}
				}
			}
			return in.Err()
		},
	}
	cmd.Flags().StringVarP(&flagModel, "model", "m", "", "model name")
	cmd.Flags().StringVarP(&flagSystem, "system", "s", "", "system prompt")
	cmd.Flags().BoolVar(&flagNoStream, "no-stream", false, "wait for the full reply instead of streaming")
	cmd.Flags().StringVar(&flagSession, "session", "", "conversation file to load and keep saving to")
	return cmd
}

func modelsCmd() *cobra.Command {
	var check string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available models",
		RunE: func(cmd *cobra.Command, args []string) error {
			if check != "" {
				ok, err := chatgpt.IsModelAvailable(cmd.Context(), flagKey, check)
				if err != nil {
					return err
				}
				if ok {
					fmt.Printf("%s: available\n", check)
				} else {
					fmt.Printf("%s: not available\n", check)
				}
				return nil
			}

			raw, err := chatgpt.AvailableModels(cmd.Context(), flagKey)
			if err != nil {
				return err
			}

			var listing struct {
				Data []struct {
					ID      string `json:"id"`
					OwnedBy string `json:"owned_by"`
				} `json:"data"`
			}
			if err := json.Unmarshal(raw, &listing); err != nil || len(listing.Data) == 0 {
				// Unknown listing shape; show it as served.
				fmt.Println(string(raw))
				return nil
			}

			table := uitable.New()
			table.AddRow("MODEL", "OWNER")
			for _, m := range listing.Data {
				table.AddRow(m.ID, m.OwnedBy)
			}
			fmt.Println(table.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&check, "check", "", "check one model name instead of listing")
	return cmd
}

func imageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate an image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := chatgpt.GenerateImage(cmd.Context(), flagKey, args[0], flagSize)
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagSize, "size", "1024x1024", "image size")
	return cmd
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			switch flagOutput {
			case "json":
				s, err := info.ToJSON()
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				fmt.Println(s)
			case "short":
				fmt.Println(info.ShortString())
			default:
				fmt.Println(info.Text())
			}
		},
	}
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "output format (text, json, short)")
	return cmd
}
