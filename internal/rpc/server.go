package rpc

import (
	"log/slog"

	"github.com/daniilsolovey/sitecontent/internal/content"
	middleware "github.com/vmkteam/zenrpc-middleware"
	"github.com/vmkteam/zenrpc/v2"
)

func New(logger *slog.Logger, articles *content.ArticleManager, interviews *content.InterviewManager) *zenrpc.Server {
	rpcServer := zenrpc.NewServer(zenrpc.Options{ExposeSMD: true})
	rpcServer.Register("articles", NewArticleService(articles))
	rpcServer.Register("interviews", NewInterviewService(interviews))
	rpcServer.Use(middleware.WithSLog(logger.InfoContext, "sitecontent", nil))

	return rpcServer
}
