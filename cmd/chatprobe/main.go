package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// chatprobe 对着正在运行的服务聊天，每行输入发一次 POST /api/chat
func main() {
	addr := flag.String("addr", "http://localhost:8080", "server address")
	user := flag.String("user", "alice", "userName sent with every message")
	flag.Parse()

	url := strings.TrimRight(*addr, "/") + "/api/chat"
	client := &http.Client{Timeout: 90 * time.Second}

	// 先探活
	resp, err := client.Get(url)
	if err != nil {
		fmt.Println("请求失败:", err)
		os.Exit(1)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	fmt.Printf("✅ %s -> %s\n", url, gjson.GetBytes(body, "message").String())
	fmt.Println("--------------------------------")

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("%s> ", *user)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Printf("%s> ", *user)
			continue
		}

		payload, _ := json.Marshal(map[string]string{"message": line, "userName": *user})
		start := time.Now()
		resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
		if err != nil {
			fmt.Println("请求失败:", err)
			fmt.Printf("%s> ", *user)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Printf("❌ %d %s\n", resp.StatusCode, gjson.GetBytes(body, "error").String())
		} else {
			fmt.Printf("💡 %s (%v)\n", gjson.GetBytes(body, "response").String(), time.Since(start).Round(time.Millisecond))
		}
		fmt.Printf("%s> ", *user)
	}

	if err := scanner.Err(); err != nil {
		fmt.Println("读取输入错误:", err)
	}
}
