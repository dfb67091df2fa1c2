package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/sql-er-diagram/internal/config"
	"github.com/vitebski/sql-er-diagram/internal/connector"
	"github.com/vitebski/sql-er-diagram/internal/generator"
	"github.com/vitebski/sql-er-diagram/internal/renderer"
	"github.com/vitebski/sql-er-diagram/internal/server"
	"github.com/vitebski/sql-er-diagram/internal/service"
	"github.com/vitebski/sql-er-diagram/internal/utils"
)

// app carries the state shared by every sub-command
type app struct {
	logLevel   string
	envFile    string
	configPath string

	input       string
	dbURL       string
	table       string
	showType    bool
	tableRadius string
	fieldRadius string

	logger *logrus.Logger
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sql-er-diagram",
		Short: "Draw radial ER diagrams from SQL CREATE TABLE scripts",
		Long: `SQL ER Diagram Generator

Extracts tables and columns from CREATE TABLE statements and lays them out
radially: tables on a circle, each table's columns on a smaller circle around
it. Diagrams are rendered with Graphviz or exported as draw.io documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup logging
			a.logger = utils.SetupLogging(a.logLevel)

			// Load environment variables
			utils.LoadEnvironmentVariables(a.envFile, a.logger)

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&a.envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to YAML config file")

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		defaultHelp(cmd, args)
		if cmd == rootCmd {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", config.Usage())
		}
	})

	rootCmd.AddCommand(
		a.generateCmd(),
		a.drawioCmd(),
		a.dotCmd(),
		a.tablesCmd(),
		a.exampleCmd(),
		a.serveCmd(),
	)
	return rootCmd
}

func (a *app) addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.input, "input", "i", "", "SQL file to read (- for stdin)")
	cmd.Flags().StringVar(&a.dbURL, "db-url", "", "Read DDL from a live database (postgres://, mysql:// or sqlite://, default $SQLERD_DB_URL)")
	cmd.Flags().StringVarP(&a.table, "table", "t", "", "Only draw this table")
	cmd.Flags().BoolVarP(&a.showType, "show-type", "s", false, "Show column types in column labels")
	cmd.Flags().StringVarP(&a.tableRadius, "table-radius", "r", "", "Radius of the table circle (default from config, 6)")
	cmd.Flags().StringVarP(&a.fieldRadius, "field-radius", "f", "", "Radius of each column circle (default from config, 2)")
}

// request loads the SQL input and merges flags over configured defaults
func (a *app) request(cmd *cobra.Command) (service.Request, error) {
	sql, err := a.loadSQL(cmd)
	if err != nil {
		return service.Request{}, err
	}

	defaults := a.cfg.LayoutParams()
	showType := defaults.ShowType
	if cmd.Flags().Changed("show-type") {
		showType = a.showType
	}
	tableRadius := a.tableRadius
	if tableRadius == "" {
		tableRadius = strconv.FormatFloat(defaults.TableRadius, 'g', -1, 64)
	}
	fieldRadius := a.fieldRadius
	if fieldRadius == "" {
		fieldRadius = strconv.FormatFloat(defaults.FieldRadius, 'g', -1, 64)
	}

	params, err := service.ParseParams(strconv.FormatBool(showType), tableRadius, fieldRadius)
	if err != nil {
		return service.Request{}, err
	}
	return service.Request{SQL: sql, Table: a.table, Params: params}, nil
}

func (a *app) loadSQL(cmd *cobra.Command) (string, error) {
	dbURL := a.dbURL
	if dbURL == "" && a.input == "" {
		dbURL = utils.GetEnv(utils.EnvPrefix+"DB_URL", "")
	}

	if dbURL != "" {
		a.logger.Infof("Reading schema from %s", utils.MaskURL(dbURL))
		src, err := connector.Open(dbURL, a.logger)
		if err != nil {
			return "", err
		}
		defer src.Close()
		return src.LoadDDL(cmd.Context())
	}

	if a.input == "" {
		return "", errors.New("no input given: use --input <file>, --input - or --db-url")
	}
	return connector.LoadFile(a.input, cmd.InOrStdin())
}

func (a *app) newRenderer() *renderer.GraphvizRenderer {
	r := renderer.NewGraphvizRenderer(a.cfg.Graphviz.Binary, a.cfg.Graphviz.Format, a.cfg.Graphviz.Timeout, a.logger)
	r.TempDir = a.cfg.Graphviz.TempDir
	return r
}

func (a *app) newService(r renderer.Renderer) *service.DiagramService {
	return service.NewDiagramService(a.cfg.Layout.FontName, r, a.logger)
}

// defaultOutput names output files after the selected table, if any
func (a *app) defaultOutput(ext string) string {
	if a.table != "" {
		return fmt.Sprintf("er_diagram_%s.%s", a.table, ext)
	}
	return "er_diagram." + ext
}

func (a *app) generateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the diagram to an image with Graphviz",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(cmd)
			if err != nil {
				return err
			}

			r := a.newRenderer()
			if err := r.Available(); err != nil {
				return err
			}

			image, err := a.newService(r).RenderImage(cmd.Context(), req)
			if err != nil {
				return err
			}

			if output == "" {
				output = a.defaultOutput(r.Format)
			}
			if err := connector.SaveFile(output, image, cmd.OutOrStdout()); err != nil {
				return err
			}
			a.logger.Infof("ER diagram saved to %s", output)
			return nil
		},
	}

	a.addInputFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output image path (default er_diagram.<format>, - for stdout)")
	return cmd
}

func (a *app) drawioCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "drawio",
		Short: "Export the diagram as a draw.io document",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(cmd)
			if err != nil {
				return err
			}

			doc, err := a.newService(nil).ExportDrawio(req)
			if err != nil {
				return err
			}

			if output == "" {
				output = a.defaultOutput("drawio")
			}
			if err := connector.SaveFile(output, []byte(doc), cmd.OutOrStdout()); err != nil {
				return err
			}
			a.logger.Infof("draw.io document saved to %s", output)
			return nil
		},
	}

	a.addInputFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default er_diagram.drawio, - for stdout)")
	return cmd
}

func (a *app) dotCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Print the Graphviz DOT source of the diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(cmd)
			if err != nil {
				return err
			}

			dot, err := a.newService(nil).ExportDot(req)
			if err != nil {
				return err
			}
			return connector.SaveFile(output, []byte(dot), cmd.OutOrStdout())
		},
	}

	a.addInputFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output path (- for stdout)")
	return cmd
}

func (a *app) tablesCmd() *cobra.Command {
	var (
		format    string
		namesOnly bool
	)

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables and columns found in the input",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(cmd)
			if err != nil {
				return err
			}
			svc := a.newService(nil)

			if namesOnly {
				names, err := svc.Tables(req.SQL)
				if err != nil {
					return err
				}
				utils.PrintTableNames(cmd.OutOrStdout(), names)
				return nil
			}

			summary, err := svc.Describe(req)
			if err != nil {
				return err
			}

			switch format {
			case "text":
				utils.PrintSchemaSummary(cmd.OutOrStdout(), summary)
				return nil
			case "yaml":
				return utils.WriteSchemaYAML(cmd.OutOrStdout(), summary)
			default:
				return fmt.Errorf("unknown format %q (must be text or yaml)", format)
			}
		},
	}

	a.addInputFlags(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, yaml)")
	cmd.Flags().BoolVar(&namesOnly, "names", false, "Only print table names")
	return cmd
}

func (a *app) exampleCmd() *cobra.Command {
	var (
		random int
		seed   int64
		output string
	)

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print the built-in example schema or a random one",
		RunE: func(cmd *cobra.Command, args []string) error {
			sql := generator.ExampleSQL
			if random > 0 {
				sg := generator.NewSampleGenerator(a.logger)
				if cmd.Flags().Changed("seed") {
					sg = generator.NewSeededSampleGenerator(seed, a.logger)
				}
				sql = sg.Generate(random)
			}
			return connector.SaveFile(output, []byte(sql), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&random, "random", 0, "Generate a random schema with this many tables")
	cmd.Flags().Lookup("random").NoOptDefVal = strconv.Itoa(utils.GetEnvInt(utils.EnvPrefix+"SAMPLE_TABLES", 5))
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for --random")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output path (- for stdout)")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var (
		port string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP front-end",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("dev") {
				a.cfg.Server.Dev = dev
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if !a.cfg.Server.Dev {
				gin.SetMode(gin.ReleaseMode)
			}

			r := a.newRenderer()
			if err := r.Available(); err != nil {
				a.logger.Warnf("Image generation will fail: %v", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(a.newService(r), a.cfg, a.logger).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from config, 8080)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode (CORS for local front-ends, debug routing)")
	return cmd
}
