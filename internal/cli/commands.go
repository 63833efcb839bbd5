package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"conectaloja/config"
	"conectaloja/internal/cartstore"
	"conectaloja/internal/domain"
	"conectaloja/internal/pkg/logger"
)

// NewRootCommand monta a árvore de comandos do cartctl.
func NewRootCommand(cfg *config.ClientConfig, log logger.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Carrinho da Conecta-Loja pela linha de comando",
		Long:          "cartctl mantém um carrinho local enquanto anônimo e o sincroniza com a API após o login.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "URL base da API")
	root.PersistentFlags().StringVar(&cfg.StorageDir, "storage", cfg.StorageDir, "diretório do armazenamento local")

	// withSession monta o núcleo, executa run e sempre finaliza (flush + close).
	withSession := func(cmd *cobra.Command, run func(ctx context.Context, s *session) error) error {
		ctx := cmd.Context()
		s, err := newSession(cfg, log)
		if err != nil {
			return err
		}
		s.start(ctx)
		runErr := run(ctx, s)
		if err := s.finish(ctx); err != nil && runErr == nil {
			runErr = err
		}
		return runErr
	}

	root.AddCommand(
		loginCommand(cfg, log, withSession),
		logoutCommand(cfg, log),
		addCommand(withSession),
		removeCommand(withSession),
		setCommand(withSession),
		clearCommand(withSession),
		showCommand(withSession),
		productsCommand(cfg, log),
	)
	return root
}

type sessionRunner func(cmd *cobra.Command, run func(ctx context.Context, s *session) error) error

func loginCommand(cfg *config.ClientConfig, log logger.Logger, withSession sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "login EMAIL SENHA",
		Short: "Autentica e mescla o carrinho local ao do servidor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cfg, log)
			if err != nil {
				return err
			}
			token, err := s.client.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("login falhou: %w", err)
			}
			if err := s.saveToken(cmd.Context(), token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Login realizado.")

			// Uma nova sessão lê a credencial gravada e executa a mesclagem no Start.
			return withSession(cmd, func(ctx context.Context, s *session) error {
				printCart(cmd.OutOrStdout(), s.engine.Store().State())
				return nil
			})
		},
	}
}

func logoutCommand(cfg *config.ClientConfig, log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Encerra a sessão e descarta o carrinho local",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(cfg, log)
			if err != nil {
				return err
			}
			if err := s.dropToken(ctx); err != nil {
				return err
			}
			s.start(ctx)
			defer s.engine.Close()
			if err := s.engine.HandleLogout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sessão encerrada.")
			return nil
		},
	}
}

func addCommand(withSession sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "add PRODUTO [QTD]",
		Short: "Adiciona um produto ao carrinho",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity := 1
			if len(args) == 2 {
				q, err := parseQuantity(args[1])
				if err != nil {
					return err
				}
				quantity = q
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				product, err := s.client.GetProduct(ctx, args[0])
				if err != nil {
					return fmt.Errorf("produto %s: %w", args[0], err)
				}
				if err := s.engine.AddItem(ctx, product, quantity); err != nil {
					return err
				}
				printCart(cmd.OutOrStdout(), s.engine.Store().State())
				return nil
			})
		},
	}
}

func removeCommand(withSession sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PRODUTO",
		Short: "Remove um produto do carrinho",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.engine.RemoveItem(ctx, args[0]); err != nil {
					return err
				}
				printCart(cmd.OutOrStdout(), s.engine.Store().State())
				return nil
			})
		},
	}
}

func setCommand(withSession sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "set PRODUTO QTD",
		Short: "Define a quantidade de um produto (0 remove)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantidade inválida: %q", args[1])
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.engine.UpdateQuantity(ctx, args[0], quantity); err != nil {
					return err
				}
				// Envia já a atualização com debounce para mostrar o carrinho confirmado.
				if err := s.engine.Flush(ctx); err != nil {
					return err
				}
				printCart(cmd.OutOrStdout(), s.engine.Store().State())
				return nil
			})
		},
	}
}

func clearCommand(withSession sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Esvazia o carrinho",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.engine.ClearCart(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Carrinho vazio.")
				return nil
			})
		},
	}
}

func showCommand(withSession sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Mostra o carrinho e os totais",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				printCart(cmd.OutOrStdout(), s.engine.Store().State())
				return nil
			})
		},
	}
}

func productsCommand(cfg *config.ClientConfig, log logger.Logger) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Lista o catálogo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cfg, log)
			if err != nil {
				return err
			}
			products, err := s.client.ListProducts(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOME\tPREÇO")
			for _, p := range products {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, domain.EffectivePrice(p).StringFixed(2))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "página")
	cmd.Flags().IntVar(&limit, "limit", 10, "itens por página")
	return cmd
}

func parseQuantity(raw string) (int, error) {
	q, err := strconv.Atoi(raw)
	if err != nil || q < 1 {
		return 0, fmt.Errorf("quantidade inválida: %q", raw)
	}
	return q, nil
}

func printCart(out io.Writer, state cartstore.State) {
	if len(state.Items) == 0 {
		fmt.Fprintf(out, "Carrinho vazio (%s).\n", state.Mode)
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUTO\tNOME\tQTD\tPREÇO")
	for _, item := range state.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", item.Product.ID, item.Product.Name, item.Quantity, domain.EffectivePrice(item.Product).StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t%d\t%s\n", state.TotalItems(), state.TotalPrice().StringFixed(2))
	tw.Flush()
	fmt.Fprintf(out, "Modo: %s\n", state.Mode)
}
