package server

import (
	"anoa.com/skillswap/internal/config"
	appRepo "anoa.com/skillswap/internal/modules/application/repository"
	appService "anoa.com/skillswap/internal/modules/application/service"
	dashboardService "anoa.com/skillswap/internal/modules/dashboard/service"
	messageRepo "anoa.com/skillswap/internal/modules/message/repository"
	messageService "anoa.com/skillswap/internal/modules/message/service"
	notifRepo "anoa.com/skillswap/internal/modules/notification/repository"
	notifService "anoa.com/skillswap/internal/modules/notification/service"
	profileService "anoa.com/skillswap/internal/modules/profile/service"
	proposalRepo "anoa.com/skillswap/internal/modules/proposal/repository"
	proposalService "anoa.com/skillswap/internal/modules/proposal/service"
	reviewRepo "anoa.com/skillswap/internal/modules/review/repository"
	reviewService "anoa.com/skillswap/internal/modules/review/service"
	searchService "anoa.com/skillswap/internal/modules/search/service"
	skillRepo "anoa.com/skillswap/internal/modules/skill/repository"
	skillService "anoa.com/skillswap/internal/modules/skill/service"
	swapRepo "anoa.com/skillswap/internal/modules/swap/repository"
	swapService "anoa.com/skillswap/internal/modules/swap/service"
	userRepo "anoa.com/skillswap/internal/modules/user/repository"
	userService "anoa.com/skillswap/internal/modules/user/service"
	"anoa.com/skillswap/pkg/database"
	"anoa.com/skillswap/pkg/mailer"
	"anoa.com/skillswap/pkg/ratelimiter"
	"anoa.com/skillswap/pkg/storage"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Repositories struct {
	Users         userRepo.UserRepository
	Skills        skillRepo.SkillRepository
	Proposals     proposalRepo.ProposalRepository
	Applications  appRepo.ApplicationRepository
	Swaps         swapRepo.SwapRepository
	Messages      messageRepo.MessageRepository
	Reviews       reviewRepo.ReviewRepository
	Notifications notifRepo.NotificationRepository
}

func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         userRepo.NewUserRepository(db),
		Skills:        skillRepo.NewSkillRepository(db),
		Proposals:     proposalRepo.NewProposalRepository(db),
		Applications:  appRepo.NewApplicationRepository(db),
		Swaps:         swapRepo.NewSwapRepository(db),
		Messages:      messageRepo.NewMessageRepository(db),
		Reviews:       reviewRepo.NewReviewRepository(db),
		Notifications: notifRepo.NewNotificationRepository(db),
	}
}

// Infrastructure holds the external clients. Redis, Search and Images may be nil.
type Infrastructure struct {
	Tx     database.Transactor
	Redis  *redis.Client
	Search searchService.ProposalIndex
	Images storage.ImageStorage
	Mailer mailer.Sender
}

type Services struct {
	Identity      userService.IdentityService
	Skills        skillService.SkillService
	Proposals     proposalService.ProposalService
	Applications  appService.ApplicationService
	Swaps         swapService.SwapService
	Messages      messageService.MessageService
	Reviews       reviewService.ReviewService
	Notifications notifService.NotificationService
	Profiles      profileService.ProfileService
	Dashboard     dashboardService.DashboardService
	Digest        *notifService.DigestJob
}

func NewServices(cfg *config.Config, repos Repositories, infra Infrastructure) *Services {
	limiter := ratelimiter.New(infra.Redis)

	skills := skillService.NewSkillService(repos.Skills)
	notifications := notifService.NewNotificationService(repos.Notifications, infra.Redis)
	reviews := reviewService.NewReviewService(repos.Reviews, repos.Swaps, repos.Skills, infra.Tx)
	proposals := proposalService.NewProposalService(repos.Proposals, skills, reviews, infra.Search, limiter, cfg.RateLimitProposal, infra.Tx)
	applications := appService.NewApplicationService(repos.Applications, repos.Proposals, repos.Users, notifications, limiter, cfg.RateLimitApply, infra.Tx)
	swaps := swapService.NewSwapService(repos.Swaps, repos.Applications, repos.Proposals, repos.Reviews, notifications, infra.Search, infra.Tx)

	return &Services{
		Identity:      userService.NewIdentityService(repos.Users),
		Skills:        skills,
		Proposals:     proposals,
		Applications:  applications,
		Swaps:         swaps,
		Messages:      messageService.NewMessageService(repos.Messages, repos.Swaps, notifications, limiter, cfg.RateLimitMessage, infra.Tx),
		Reviews:       reviews,
		Notifications: notifications,
		Profiles:      profileService.NewProfileService(repos.Users, repos.Skills, skills, reviews, infra.Images),
		Dashboard:     dashboardService.NewDashboardService(proposals, applications, swaps, reviews),
		Digest: notifService.NewDigestJob(repos.Notifications, infra.Mailer, notifService.DigestConfig{
			AppURL:    cfg.AppURL,
			Delay:     cfg.DigestDelay,
			BatchSize: cfg.DigestBatchSize,
			Schedule:  cfg.DigestSchedule,
		}),
	}
}
