/*
 * @Description: 程序入口
 * @Author: yzcheng90
 * @Date: 2025-11-19 00:21:55
 * @LastEditTime: 2025-11-23 10:19:06
 * @LastEditors: yzcheng90
 */
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yzcheng90/Photography-vue/cmd/server"
	"github.com/yzcheng90/Photography-vue/pkg/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", config.DefaultFilePath, "配置文件路径")
	flag.Parse()

	app, cleanup, err := server.NewApp(configPath)
	if err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}
	defer cleanup()
	defer app.Stop()

	app.PrintBanner()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Printf("应用运行失败: %v", err)
		return
	}
	log.Println("应用已退出。")
}
