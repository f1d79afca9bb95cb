package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/shiftboard/hours-import/internal/config"
	"github.com/shiftboard/hours-import/internal/repository"
	"github.com/shiftboard/hours-import/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var orgID int64
	var output string
	var extraName string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 生成考勤机导出样例文件)")
	flag.IntVar(&n, "n", 5, "要插入的员工数量")
	flag.Int64Var(&orgID, "org", 1, "员工所属的组织 ID")
	flag.StringVar(&output, "o", "sample_timeclock.xlsx", "样例文件的输出路径")
	flag.StringVar(&extraName, "extra-name", "ישראל ישראלי", "样例文件中额外加入的、名录里不存在的员工姓名")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}

		cnt := seed.SeedWorkers(context.Background(), repo, orgID, n, cfg.Seed.User.Password, cfg.Email.UserDomain)
		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 2:
		// 样例文件包含名录中的所有员工，外加一个无法匹配的员工，方便手动测试自动创建
		workers, err := repo.FindActiveWorkers(context.Background(), orgID)
		if err != nil {
			slog.Error("无法获取员工名录", slog.String("error", err.Error()))
			return
		}

		names := make([]string, 0, len(workers)+1)
		for _, w := range workers {
			names = append(names, w.DisplayName())
		}
		if extraName != "" {
			names = append(names, extraName)
		}

		data, err := seed.BuildSampleExport(names)
		if err != nil {
			slog.Error("无法生成样例文件", slog.String("error", err.Error()))
			return
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			slog.Error("无法写入样例文件", slog.String("error", err.Error()))
			return
		}

		slog.Info("已生成样例文件", slog.String("path", output), slog.Int("workers", len(names)))
	default:
		slog.Error("指定的操作非法")
	}
}
