package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"admincms/config"
	"admincms/internal/api"
	"admincms/internal/app"
	"admincms/internal/auth"
	"admincms/internal/model"
	"admincms/internal/service"
	"admincms/pkg/database"
	"admincms/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "执行建表脚本",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := database.Apply(cmd.Context(), a.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "迁移完成")
			return nil
		})
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "缓存维护",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [prefix]",
	Short: "删除指定前缀的缓存，不指定时清空全部",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			n, err := a.Cache.InvalidatePrefix(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除 %d 个缓存键\n", n)
			return nil
		})
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "列出所有API路由",
	RunE: func(cmd *cobra.Command, args []string) error {
		printRoutes(cmd.OutOrStdout())
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "用户维护",
}

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "创建管理员账号",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			return createAdmin(cmd.Context(), a.Services.Users, adminUsername, adminEmail, adminPassword, cmd.OutOrStdout())
		})
	},
}

var adsCmd = &cobra.Command{
	Use:   "ads",
	Short: "广告维护",
}

var expireAdsCmd = &cobra.Command{
	Use:   "expire",
	Short: "把已过结束时间的广告标记为过期",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			n, err := a.Services.Advertisements.ExpireFinished(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d 条广告已过期\n", n)
			return nil
		})
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "文章维护",
}

var purgeDays int

var purgePostsCmd = &cobra.Command{
	Use:   "purge",
	Short: "彻底删除回收站中超过保留天数的文章",
	RunE: func(cmd *cobra.Command, args []string) error {
		days := purgeDays
		if days < 0 {
			return fmt.Errorf("--days 不能为负数")
		}
		if days == 0 {
			days = cfg.Scheduler.TrashRetentionDays
		}
		before := time.Now().AddDate(0, 0, -days)
		return withApp(cmd.Context(), func(a *app.App) error {
			n, err := a.Services.Posts.PurgeTrashed(cmd.Context(), before)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已清理 %d 篇文章\n", n)
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)

	createAdminCmd.Flags().StringVar(&adminUsername, "username", "admin", "用户名")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "邮箱")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "密码")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	userCmd.AddCommand(createAdminCmd)

	adsCmd.AddCommand(expireAdsCmd)

	purgePostsCmd.Flags().IntVar(&purgeDays, "days", 0, "保留天数，默认使用配置")
	postsCmd.AddCommand(purgePostsCmd)
}

// createAdmin 以系统身份创建管理员
func createAdmin(ctx context.Context, users service.UserService, username, email, password string, out io.Writer) error {
	system := auth.Principal{Username: "adminctl", Role: model.RoleAdmin}
	user, err := users.Create(ctx, map[string]interface{}{
		"username": username,
		"name":     username,
		"email":    email,
		"password": password,
		"role":     string(model.RoleAdmin),
	}, system)
	if err != nil {
		if fields, ok := service.ValidationFields(err); ok {
			for field, msg := range fields {
				fmt.Fprintf(out, "%s: %s\n", field, msg)
			}
		}
		return err
	}
	fmt.Fprintf(out, "管理员 %s 已创建 (id=%d)\n", user.Username, user.ID)
	return nil
}

// printRoutes 输出路由表，不需要连接外部服务
func printRoutes(out io.Writer) {
	router := api.SetupRouter(&config.Config{LogLevel: "error"}, logger.NewNop(), api.Services{}, nil, nil)
	routes := router.Routes()
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	for _, r := range routes {
		fmt.Fprintf(out, "%-7s %s\n", r.Method, r.Path)
	}
}
