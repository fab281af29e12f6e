package main

import (
	"flag"
	"fmt"
	"os"

	"DateServer/config"
	"DateServer/pkg/util"

	"golang.org/x/crypto/bcrypt"
)

// 本地调试工具：按当前环境配置签发 JWT，用于直连 connect 服务的 /ws。
// -password 非空时额外输出 bcrypt 哈希，可直接写入 Mongo 种子数据。
func main() {
	userID := flag.String("user", "", "用户 ID")
	password := flag.String("password", "", "明文密码（可选）")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "用法: devtoken -user <id> [-password <plain>]")
		os.Exit(2)
	}

	cfg := config.Load()
	util.InitJWT(cfg.JWT)

	token, err := util.GenerateToken(*userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("token: %s\n", token)
	fmt.Printf("ws:    ws://localhost%s/ws?token=%s\n", cfg.Connect.Addr, token)

	if *password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "加密失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("bcrypt: %s\n", hashed)
	}
	fmt.Println("\n注意：Redis 启用时还需登录写入会话，否则握手会被拒绝")
}
