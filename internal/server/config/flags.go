package config

import (
	"flag"
	"os"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-e", "-l", "-d", "-s", "-t", "-r", "-m", "-u", "-p", "-b", "-n", "-x"}

// parseFlags overlays command-line flags onto config. When args is nil,
// os.Args[1:] is used.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. "0.0.0.0:5000")
//	-g string   gRPC health bind address
//	-e string   environment (production, development, test)
//	-l string   log level
//	-d string   database DSN (postgres://, mongodb://, memory://)
//	-s string   token secret
//	-t int      token validity, minutes
//	-r int      reset token validity, minutes
//	-m string   email service (smtp, sendgrid, log)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket
//	-n string   S3 region
//	-x string   S3 base endpoint
func parseFlags(config *Config, args []string) error {
	if args == nil {
		args = os.Args[1:]
	}
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "gRPC health address and port")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token secret")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	resetValidity := fs.Int("r", int(config.ResetTokenValidityDuration.Minutes()), "reset token validity (in minutes)")

	fs.StringVar(&config.EmailService, "m", config.EmailService, "email service")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "n", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "x", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["t"] {
		config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	}
	if set["r"] {
		config.ResetTokenValidityDuration = time.Duration(*resetValidity) * time.Minute
	}
	return nil
}
