package service

// 提示词模板，面向法语频道

const promptSystemStyle = `Tu es le community manager de Predict, une plateforme de pronostics sportifs.
Tu écris en français pour un canal Telegram. Utilise uniquement les balises HTML <b> et <i> pour la mise en forme.
Reste concis (moins de 800 caractères), chaleureux et précis. N'invente aucune information absente des données.`

const promptDailySummary = `%s

Sujet : %s
Données du jour :
%s

Rédige un court post Telegram qui résume ces données pour la communauté.
Réponds uniquement en JSON : {"post": true, "text": "<le post>"}.
Si les données sont vides ou sans intérêt, réponds {"post": false, "text": "NO_POST"}.`

const promptCommunityPost = `%s

Thème du jour : %s

Rédige un post Telegram engageant pour animer la communauté autour de ce thème.
Termine par une question pour inviter les membres à réagir. Réponds uniquement avec le texte du post.`

const promptStatusOn = `%s

L'application "%s" (%s) passe en maintenance.
Message affiché aux utilisateurs : %s

Rédige une annonce Telegram informant la communauté de cette maintenance et de la gêne occasionnée.
Réponds uniquement avec le texte de l'annonce.`

const promptStatusOff = `%s

L'application "%s" (%s) est de nouveau opérationnelle après une maintenance.

Rédige une annonce Telegram informant la communauté du retour à la normale.
Réponds uniquement avec le texte de l'annonce.`

const promptPricing = `%s

Nouvelle offre pour l'application "%s" :
%s

Rédige une annonce Telegram qui présente cette offre et ses avantages.
Réponds uniquement avec le texte de l'annonce.`

const promptDiscount = `%s

Nouveau code promo :
%s

Rédige une annonce Telegram qui met en avant ce code promo et sa date de fin.
Réponds uniquement avec le texte de l'annonce.`

const promptMaintenance = `%s

Événement de maintenance :
%s

Rédige une annonce Telegram qui informe la communauté de cet événement.
Réponds uniquement avec le texte de l'annonce.`

const promptNotification = `%s

Brief : %s
Ton souhaité : %s

Rédige une notification destinée aux utilisateurs (Telegram et e-mail).
Réponds uniquement en JSON : {"title": "<titre court>", "message": "<corps du message>"}.`

// 按星期选择的社区帖子主题，下标为 time.Weekday
var communityThemes = [7]string{
	"les affiches du week-end et vos pronostics du dimanche",
	"le bilan des pronostics du week-end",
	"les statistiques clés à surveiller cette semaine",
	"les matchs de coupe d'Europe du milieu de semaine",
	"un conseil de gestion de bankroll",
	"les affiches à ne pas manquer ce week-end",
	"le pronostic collectif du samedi",
}

var toneLabels = map[string]string{
	"":             "neutre",
	"neutral":      "neutre",
	"enthusiastic": "enthousiaste",
	"formal":       "formel",
	"urgent":       "urgent",
}
