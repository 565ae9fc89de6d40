// File: cmd/diagnostic/gateway_diagnostic.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/iyunix/go-smsassistent/internal/config"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/services/sms"
)

const usage = `usage: diagnostic <command> [args]

commands:
  balance                 print the account balance
  senders                 list sender names
  templates               list message templates
  send <phone> <text>     send one message
  status <id> [id...]     query delivery status
  hlr <phone> [phone...]  start HLR lookups`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.SMSLogin == "" {
		log.Fatal("SMS_LOGIN not set in environment")
	}

	diagLogger, err := logger.New(logger.Options{Service: "diagnostic", Level: "DEBUG"})
	if err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer func() { _ = diagLogger.Sync() }()

	smsConfig := sms.DefaultConfig()
	smsConfig.Credentials = sms.Credentials{Login: cfg.SMSLogin, Password: cfg.SMSPassword, Token: cfg.SMSToken}
	smsConfig.BaseURL = cfg.SMSBaseURL
	smsConfig.Mode = sms.ParseMode(cfg.SMSMode)
	smsConfig.Timeout = cfg.SMSTimeout

	client, err := sms.NewClient(smsConfig, diagLogger)
	if err != nil {
		log.Fatalf("Gateway client error: %v", err)
	}

	ctx := context.Background()
	args := os.Args[2:]
	fmt.Printf("Gateway: %s (mode %s)\n", smsConfig.BaseURL, smsConfig.Mode)

	switch os.Args[1] {
	case "balance":
		report(client.GetBalance(ctx))
	case "senders":
		report(client.GetSenders(ctx))
	case "templates":
		report(client.GetTemplates(ctx))
	case "send":
		if len(args) != 2 {
			log.Fatal("send needs <phone> <text>")
		}
		report(client.SendSMS(ctx, sms.Message{
			Sender:     cfg.SMSSender,
			Recipients: []string{args[0]},
			Text:       args[1],
		}))
	case "status":
		ids := make([]int, 0, len(args))
		for _, a := range args {
			id, err := strconv.Atoi(a)
			if err != nil {
				log.Fatalf("invalid message id %q", a)
			}
			ids = append(ids, id)
		}
		report(client.GetSMSStatus(ctx, ids))
	case "hlr":
		report(client.SendHLR(ctx, args))
	default:
		fmt.Println(usage)
		os.Exit(2)
	}
}

func report[T any](res sms.Result[T]) {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
	if res.Error {
		os.Exit(1)
	}
}
