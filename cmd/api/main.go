package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/zhli-dev/meiduo-backend/internal/captcha"
	"github.com/zhli-dev/meiduo-backend/internal/config"
	"github.com/zhli-dev/meiduo-backend/internal/logging"
	"github.com/zhli-dev/meiduo-backend/internal/oauth"
	miniostore "github.com/zhli-dev/meiduo-backend/internal/repository/minio"
	"github.com/zhli-dev/meiduo-backend/internal/repository/postgres"
	"github.com/zhli-dev/meiduo-backend/internal/repository/redisstore"
	"github.com/zhli-dev/meiduo-backend/internal/service"
	"github.com/zhli-dev/meiduo-backend/internal/sms"
	"github.com/zhli-dev/meiduo-backend/internal/token"
	transporthttp "github.com/zhli-dev/meiduo-backend/internal/transport/http"
	"github.com/zhli-dev/meiduo-backend/internal/transport/mail"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	redisClient := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()
	codeStore := redisstore.NewCodeStore(redisClient)

	userRepo := postgres.NewUserRepo(db)
	addressRepo := postgres.NewAddressRepo(db)
	areaRepo := postgres.NewAreaRepo(db)
	skuRepo := postgres.NewSKURepo(db)
	oauthRepo := postgres.NewOAuthQQRepo(db)

	minioClient, err := miniostore.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}
	storage := miniostore.NewStorage(minioClient)

	tokens := token.NewService(cfg.SecretKey, map[string]time.Duration{
		token.ScopeSMSSend:       cfg.SMSTokenTTL,
		token.ScopePasswordReset: cfg.ResetTokenTTL,
		token.ScopeOAuthBind:     cfg.OAuthBindTokenTTL,
		token.ScopeEmailVerify:   cfg.EmailTokenTTL,
	})
	jwtManager := util.NewJWTManager(cfg.SecretKey, cfg.LoginTokenTTL)

	gateway := sms.NewGatewayClient(cfg.SMSGatewayURL, cfg.SMSGatewayAPIKey, cfg.SMSSender, cfg.SMSDryRun)
	dispatcher := sms.NewDispatcher(gateway, cfg.SMSQueueSize, cfg.SMSWorkers)
	defer dispatcher.Close()

	mailer := mail.NewVerifyMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	qqClient := oauth.NewQQClient(cfg.QQAppID, cfg.QQAppKey, cfg.QQRedirectURL, cfg.QQDefaultNext)

	verificationService := service.NewVerificationService(
		codeStore,
		captcha.NewGenerator(),
		tokens,
		dispatcher,
		userRepo,
		service.VerificationConfig{
			ImageCodeTTL: cfg.ImageCodeTTL,
			SMSCodeTTL:   cfg.SMSCodeTTL,
			SendCooldown: cfg.SendCooldown,
		},
	)
	userService := service.NewUserService(userRepo, codeStore, jwtManager, tokens, mailer, cfg.EmailVerifyBaseURL)
	addressService := service.NewAddressService(addressRepo, userRepo)
	areaService := service.NewAreaService(areaRepo)
	goodsService := service.NewGoodsService(skuRepo, storage, cfg.MinIOBucketGoods, cfg.MinIOURLExpiry)
	oauthService := service.NewOAuthQQService(qqClient, oauthRepo, userRepo, codeStore, tokens, jwtManager)

	e := transporthttp.NewRouter(cfg.AllowOrigins)
	transporthttp.RegisterVerification(e, verificationService)
	transporthttp.RegisterUsers(e, userService)
	transporthttp.RegisterAddresses(e, userService, addressService)
	transporthttp.RegisterAreas(e, areaService)
	transporthttp.RegisterGoods(e, goodsService)
	transporthttp.RegisterOAuthQQ(e, oauthService)
	transporthttp.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
