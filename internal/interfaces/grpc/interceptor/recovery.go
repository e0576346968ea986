package interceptor

import (
	"context"
	"runtime/debug"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryRecoveryInterceptor는 gRPC unary 요청에서 패닉을 복구합니다
func UnaryRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "panic recovered in gRPC unary handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					logger.ErrorStack(string(debug.Stack())),
				)
				err = status.Error(codes.Internal, apperrors.MsgGeneric)
			}
		}()

		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor는 gRPC stream 요청에서 패닉을 복구합니다
func StreamRecoveryInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ss.Context(), "panic recovered in gRPC stream handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					logger.ErrorStack(string(debug.Stack())),
				)
				err = status.Error(codes.Internal, apperrors.MsgGeneric)
			}
		}()

		return handler(srv, ss)
	}
}

// UnaryErrorInterceptor는 AppError를 gRPC 상태로 변환합니다
// non-operational 에러의 메시지는 노출하지 않습니다
func UnaryErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return resp, ToStatus(err)
	}
}

// ToStatus는 에러를 gRPC status 에러로 변환합니다
func ToStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	var appErr *apperrors.AppError
	if !apperrors.As(err, &appErr) {
		return status.Error(codes.Internal, apperrors.MsgGeneric)
	}
	if !appErr.IsOperational() {
		return status.Error(codes.Internal, apperrors.MsgGeneric)
	}
	return status.Error(KindToCode(appErr.Kind), appErr.Message)
}

// KindToCode는 에러 Kind를 gRPC 코드로 매핑합니다
func KindToCode(kind apperrors.Kind) codes.Code {
	switch kind {
	case apperrors.KindValidation:
		return codes.InvalidArgument
	case apperrors.KindUnauthenticated:
		return codes.Unauthenticated
	case apperrors.KindForbidden:
		return codes.PermissionDenied
	case apperrors.KindNotFound:
		return codes.NotFound
	case apperrors.KindConflict:
		return codes.AlreadyExists
	case apperrors.KindRateLimited:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}
